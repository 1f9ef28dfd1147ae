// Package faq answers free-text help questions with canned responses.
//
// Matching is literal: the question is lower-cased and each rule's keywords
// are tested as substrings, in rule order. The first rule with any matching
// keyword wins. There is no state, no scoring and no learning.
package faq

import "strings"

// Rule pairs a keyword group with the answer given when any keyword matches.
type Rule struct {
	Keywords []string
	Answer   string
}

// Responder is an immutable ordered rule table plus a fallback answer.
type Responder struct {
	rules    []Rule
	fallback string
}

// New builds a Responder. Keywords are lower-cased once here so Answer only
// needs to lower-case the question.
func New(rules []Rule, fallback string) *Responder {
	r := &Responder{
		rules:    make([]Rule, len(rules)),
		fallback: fallback,
	}
	for i, rule := range rules {
		kws := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			if kw = strings.ToLower(kw); kw != "" {
				kws = append(kws, kw)
			}
		}
		r.rules[i] = Rule{Keywords: kws, Answer: rule.Answer}
	}
	return r
}

// Answer returns the canned response for question.
func (r *Responder) Answer(question string) string {
	q := strings.ToLower(question)
	for _, rule := range r.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(q, kw) {
				return rule.Answer
			}
		}
	}
	return r.fallback
}

const (
	HackingAnswer    = "হ্যাকিং সমস্যা হলে: পাসওয়ার্ড পরিবর্তন, 2FA চালু, এবং দ্রুত অভিযোগ দিন।"
	HarassmentAnswer = "হ্যারাসমেন্ট হলে: প্রমাণ সংরক্ষণ করুন, তারিখ/সময় লিখে রাখুন, এবং অভিযোগ করুন।"
	CorruptionAnswer = "দুর্নীতি রিপোর্টে নাম গোপন রাখা যাবে। প্রমাণ বা তথ্য যুক্ত করুন।"
	FallbackAnswer   = "দয়া করে বিস্তারিত লিখুন, আমরা আপনাকে সহায়তা দেব।"
)

// DefaultRules is the portal's rule table in priority order:
// hacking, then harassment, then corruption.
func DefaultRules() []Rule {
	return []Rule{
		{Keywords: []string{"হ্যাক", "hacking"}, Answer: HackingAnswer},
		{Keywords: []string{"ভোগান্তি", "হ্যারাস", "harass"}, Answer: HarassmentAnswer},
		{Keywords: []string{"দুর্নীতি", "corruption"}, Answer: CorruptionAnswer},
	}
}

func Default() *Responder {
	return New(DefaultRules(), FallbackAnswer)
}
