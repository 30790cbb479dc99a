package systems

import (
	"strings"
)

// DefaultWeaponTokens is the attachment name vocabulary that marks weapon
// parts. Matching is by substring.
var DefaultWeaponTokens = []string{
	"hero", "missile", "narc", "uac", "uac2", "uac5", "uac10", "uac20",
	"ac2", "ac5", "ac10", "ac20", "gauss", "ppc", "flamer", "_mg_", "lbx",
	"laser", "ams", "phoenix", "blank", "invasion", "hmg", "lmg", "lams",
}

// Material classes. The resolved material key is "<mech>_<class>", except
// for the bare generic fallback.
const (
	ClassWindow  = "window"
	ClassVariant = "variant"
	ClassBody    = "body"
	ClassGeneric = "generic"
)

// Rule maps attachment names to a material class. Rules are tried in order and
// the first match wins.
type Rule struct {
	Name  string
	Match func(attachmentName string) bool
	Class string
}

// Classifier picks the material for a geometry part. It holds no mutable
// state; the same inputs always give the same answer.
type Classifier struct {
	rules []Rule
}

func NewClassifier(weaponTokens []string) *Classifier {
	tokens := append([]string(nil), weaponTokens...)
	return &Classifier{rules: []Rule{
		{Name: "cockpit", Match: contains("head_cockpit"), Class: ClassWindow},
		{Name: "weapon", Match: contains(tokens...), Class: ClassVariant},
		{Name: "damaged-or-prop", Match: contains("_damaged", "_prop"), Class: ClassBody},
	}}
}

// Rules returns the name based rules in evaluation order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

func contains(tokens ...string) func(string) bool {
	return func(name string) bool {
		for _, t := range tokens {
			if t != "" && strings.Contains(name, t) {
				return true
			}
		}
		return false
	}
}

// Provisional is the name based guess made before the part's mesh is known.
type Provisional struct {
	Mech  string
	Class string
	// Rule is the name of the matching rule, "default" when none matched.
	Rule string
}

func (p Provisional) Key() string {
	return p.Mech + "_" + p.Class
}

// Classify applies the name rules to an attachment name.
func (c *Classifier) Classify(attachmentName, mech string) Provisional {
	for _, r := range c.rules {
		if r.Match(attachmentName) {
			return Provisional{Mech: mech, Class: r.Class, Rule: r.Name}
		}
	}
	return Provisional{Mech: mech, Class: ClassBody, Rule: "default"}
}

// Resolution is the final material choice for one mesh.
type Resolution struct {
	Key        string
	Class      string
	Overridden bool
}

// MaterialLookup is the part of a material set the classifier needs.
type MaterialLookup interface {
	Has(name string) bool
}

// Confirm applies the slot rule once the authored slot name is known: a slot
// called "...generic..." uses the model's generic material, or the shared
// "generic" one when the model has none. Otherwise the guess stands.
func (p Provisional) Confirm(slotName string, set MaterialLookup) Resolution {
	if strings.Contains(slotName, ClassGeneric) {
		key := p.Mech + "_" + ClassGeneric
		if set == nil || !set.Has(key) {
			key = ClassGeneric
		}
		return Resolution{Key: key, Class: ClassGeneric, Overridden: true}
	}
	return Resolution{Key: p.Key(), Class: p.Class}
}
