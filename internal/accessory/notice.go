package accessory

import "fmt"

// DenyNotice is shown when equipping is refused.
func DenyNotice(d *Definition, dec Decision) string {
	if dec.Reason == ReasonNoCore {
		return fmt.Sprintf("⚠ %s needs a mechanical core", d.Name)
	}
	return fmt.Sprintf("⚠ Not enough active modules (%d/%d)", dec.Observed, dec.Required)
}

// ActivationNotice is shown on a successful equip.
func ActivationNotice(d *Definition, b Binding) string {
	if d.Label == "" {
		return fmt.Sprintf("✦ %s active (modules: %d)", d.Name, b.Active)
	}
	return fmt.Sprintf("✦ %s active (modules: %d, %s)", d.Name, b.Active, d.FormatValue(b.Value))
}

// EjectNotice explains a forced removal.
func EjectNotice(d *Definition, dec Decision) string {
	if dec.Reason == ReasonNoCore {
		return fmt.Sprintf("⚠ %s needs a mechanical core!", d.Name)
	}
	return fmt.Sprintf("⚠ %s needs at least %d active modules (has %d)", d.Name, dec.Required, dec.Observed)
}

// RemovedNotice is shown when the wearer takes the accessory off.
func RemovedNotice(d *Definition) string {
	return fmt.Sprintf("✦ %s removed", d.Name)
}
