// Package finding defines the warning values shared by every engine. Engines
// emit raw Findings while they compute; Reduce turns a list of raw findings
// into de-duplicated, name-enriched Warnings. Warnings are never stored: they
// are recomputed from current inputs on every query.
package finding

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/labels"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

func (s Severity) rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// RuleID names the condition that produced a finding.
type RuleID string

const (
	RuleLowTotalSamples        RuleID = "low-total-samples"
	RuleLowClassSamples        RuleID = "low-class-samples"
	RuleNodataExcluded         RuleID = "nodata-excluded"
	RulePredictedOnlyClass     RuleID = "predicted-only-class"
	RuleReferenceOnlyClass     RuleID = "reference-only-class"
	RuleEmptyRow               RuleID = "empty-row"
	RuleEmptyColumn            RuleID = "empty-column"
	RuleUndefinedProducers     RuleID = "undefined-producers-accuracy"
	RuleUndefinedUsers         RuleID = "undefined-users-accuracy"
	RuleUndefinedF1            RuleID = "undefined-f1"
	RuleUndefinedKappa         RuleID = "undefined-kappa"
	RuleDisagreementClamped    RuleID = "disagreement-clamped"
	RuleAreaEmptyStratum       RuleID = "area-empty-stratum"
	RuleAreaSingleSample       RuleID = "area-single-sample-stratum"
	RuleAreaUnmappedClass      RuleID = "area-unmapped-class"
	RuleGeographicCRS          RuleID = "geographic-crs"
	RuleAllocationBelowMin     RuleID = "allocation-below-minimum"
	RuleAllocationOverCapacity RuleID = "allocation-over-capacity"
	RuleSampleShortfall        RuleID = "sample-shortfall"
	RuleNoCandidates           RuleID = "no-candidates"
)

// Scope tells what kind of entity a finding references.
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopeClass   Scope = "class"
	ScopeStratum Scope = "stratum"
)

// Entity is the subject of a finding.
type Entity struct {
	Scope Scope             `json:"scope" yaml:"scope"`
	ID    labels.ClassLabel `json:"id" yaml:"id"`
	Name  string            `json:"name,omitempty" yaml:"name,omitempty"`
}

func Global() Entity                      { return Entity{Scope: ScopeGlobal} }
func Class(c labels.ClassLabel) Entity   { return Entity{Scope: ScopeClass, ID: c} }
func Stratum(c labels.ClassLabel) Entity { return Entity{Scope: ScopeStratum, ID: c} }

// Subject renders the entity for humans: "class 3 (Water)", "global".
func (e Entity) Subject() string {
	if e.Scope == ScopeGlobal || e.Scope == "" {
		return "global"
	}
	s := fmt.Sprintf("%s %d", e.Scope, e.ID)
	if e.Name != "" {
		s += " (" + e.Name + ")"
	}
	return s
}

// Finding is one raw observation emitted by an engine.
type Finding struct {
	Rule     RuleID
	Severity Severity
	Entity   Entity
	Message  string
}

// New builds a warning-severity finding.
func New(rule RuleID, e Entity, format string, args ...any) Finding {
	return Finding{Rule: rule, Severity: SeverityWarning, Entity: e, Message: fmt.Sprintf(format, args...)}
}

// Info builds an info-severity finding.
func Info(rule RuleID, e Entity, format string, args ...any) Finding {
	f := New(rule, e, format, args...)
	f.Severity = SeverityInfo
	return f
}

// Error builds an error-severity finding.
func Error(rule RuleID, e Entity, format string, args ...any) Finding {
	f := New(rule, e, format, args...)
	f.Severity = SeverityError
	return f
}

// Warning is a reduced, de-duplicated finding ready for reporting.
type Warning struct {
	Rule        RuleID   `json:"rule" yaml:"rule"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Entity      Entity   `json:"entity" yaml:"entity"`
	Message     string   `json:"message" yaml:"message"`
	Occurrences int      `json:"occurrences" yaml:"occurrences"`
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s: %s", w.Severity, w.Entity.Subject(), w.Message)
}

type key struct {
	rule  RuleID
	scope Scope
	id    labels.ClassLabel
}

// Reduce folds raw findings into warnings keyed by (rule, entity). The first
// message for a key wins; later duplicates only raise Occurrences. Class and
// stratum entities are enriched with names when available. Output order is
// canonical: severity, then scope, then entity id, then rule.
func Reduce(raw []Finding, names map[labels.ClassLabel]string) []Warning {
	index := make(map[key]int, len(raw))
	out := make([]Warning, 0, len(raw))
	for _, f := range raw {
		k := key{rule: f.Rule, scope: f.Entity.Scope, id: f.Entity.ID}
		if i, ok := index[k]; ok {
			out[i].Occurrences++
			continue
		}
		e := f.Entity
		if e.Scope == "" {
			e.Scope = ScopeGlobal
		}
		if e.Scope != ScopeGlobal && e.Name == "" {
			e.Name = names[e.ID]
		}
		index[k] = len(out)
		out = append(out, Warning{
			Rule:        f.Rule,
			Severity:    f.Severity,
			Entity:      e,
			Message:     f.Message,
			Occurrences: 1,
		})
	}

	slices.SortStableFunc(out, func(a, b Warning) int {
		return cmp.Or(
			cmp.Compare(a.Severity.rank(), b.Severity.rank()),
			cmp.Compare(scopeRank(a.Entity.Scope), scopeRank(b.Entity.Scope)),
			cmp.Compare(a.Entity.ID, b.Entity.ID),
			cmp.Compare(a.Rule, b.Rule),
		)
	})
	return out
}

// HasSeverity reports whether any warning is at least as severe as s.
func HasSeverity(ws []Warning, s Severity) bool {
	for _, w := range ws {
		if w.Severity.rank() <= s.rank() {
			return true
		}
	}
	return false
}

func scopeRank(s Scope) int {
	switch s {
	case ScopeGlobal:
		return 0
	case ScopeClass:
		return 1
	default:
		return 2
	}
}
