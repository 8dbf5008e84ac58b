// Package quality compares translation bundles against the Japanese reference.
package quality

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"sort"

	"github.com/fairyhunter13/vegifarm-storefront/internal/i18n"
	"github.com/fairyhunter13/vegifarm-storefront/internal/model"
)

// Severity ranks an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is one finding for one key in one locale.
type Issue struct {
	Locale   i18n.Locale `json:"locale"`
	Key      string      `json:"key"`
	Severity Severity    `json:"severity"`
	Message  string      `json:"message"`
}

// Result groups the issues of a run.
type Result struct {
	Issues []Issue `json:"issues"`
}

var placeholderRe = regexp.MustCompile(`\{(\w+)\}`)

func placeholders(s string) []string {
	var out []string
	for _, m := range placeholderRe.FindAllStringSubmatch(s, -1) {
		if !slices.Contains(out, m[1]) {
			out = append(out, m[1])
		}
	}
	sort.Strings(out)
	return out
}

// Check compares every bundle with reference. The reference locale itself is skipped.
func Check(reference i18n.Bundle, bundles map[i18n.Locale]i18n.Bundle) Result {
	refKeys := reference.Keys()
	sort.Strings(refKeys)
	var res Result
	for _, l := range i18n.All() {
		b, ok := bundles[l]
		if !ok || l == i18n.DefaultLocale {
			continue
		}
		for _, key := range refKeys {
			want := reference[key]
			got, present := b[key]
			switch {
			case !present:
				res.add(l, key, SeverityError, "missing translation")
			case got == "":
				res.add(l, key, SeverityError, "empty translation")
			case !slices.Equal(placeholders(want), placeholders(got)):
				res.add(l, key, SeverityWarning, fmt.Sprintf("placeholders %v, reference has %v", placeholders(got), placeholders(want)))
			case got == want && want != "":
				res.add(l, key, SeverityInfo, "identical to reference")
			}
		}
		extra := b.Keys()
		sort.Strings(extra)
		for _, key := range extra {
			if _, ok := reference[key]; !ok {
				res.add(l, key, SeverityWarning, "key not in reference")
			}
		}
	}
	return res
}

func (r *Result) add(l i18n.Locale, key string, sev Severity, msg string) {
	r.Issues = append(r.Issues, Issue{Locale: l, Key: key, Severity: sev, Message: msg})
}

// Count returns the number of issues with severity sev.
func (r Result) Count(sev Severity) int {
	n := 0
	for _, is := range r.Issues {
		if is.Severity == sev {
			n++
		}
	}
	return n
}

// Report converts the result into a storable quality report.
func (r Result) Report(createdBy string) model.QualityReport {
	byLocale := map[string]any{}
	for _, is := range r.Issues {
		list, _ := byLocale[string(is.Locale)].([]any)
		byLocale[string(is.Locale)] = append(list, map[string]any{
			"key":      is.Key,
			"severity": string(is.Severity),
			"message":  is.Message,
		})
	}
	return model.QualityReport{
		ReportData:  model.JSONMap(byLocale),
		TotalIssues: len(r.Issues),
		Errors:      r.Count(SeverityError),
		Warnings:    r.Count(SeverityWarning),
		Info:        r.Count(SeverityInfo),
		CreatedBy:   createdBy,
	}
}

// Run loads every locale through loader and checks it. A locale that fails to
// load is reported as a single error issue.
func Run(ctx context.Context, loader i18n.Loader) (Result, error) {
	reference, err := loader.Load(ctx, i18n.DefaultLocale)
	if err != nil {
		return Result{}, fmt.Errorf("quality: load reference: %w", err)
	}
	bundles := map[i18n.Locale]i18n.Bundle{}
	var failed []Issue
	for _, l := range i18n.All() {
		if l == i18n.DefaultLocale {
			continue
		}
		b, err := loader.Load(ctx, l)
		if err != nil {
			failed = append(failed, Issue{Locale: l, Severity: SeverityError, Message: err.Error()})
			continue
		}
		bundles[l] = b
	}
	res := Check(reference, bundles)
	res.Issues = append(failed, res.Issues...)
	return res, nil
}
