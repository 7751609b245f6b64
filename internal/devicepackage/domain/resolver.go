package domain

import (
	"github.com/bwmarrin/snowflake"
	"github.com/orbitlinklabs/orbitlink/internal/period"
)

// Device carries the attributes package resolution depends on: the device's
// model and the merchant owning its asset.
type Device struct {
	TrackerID  snowflake.ID
	ModelID    snowflake.ID
	MerchantID snowflake.ID
}

// TrackerPackageRelation pairs a device with its resolved package, nil when
// no candidate matched.
type TrackerPackageRelation struct {
	Device  Device
	Package *DevicePackage
}

// SupportsModel reports whether the package's compatible-model set contains
// the given model.
func (p *DevicePackage) SupportsModel(modelID snowflake.ID) bool {
	for _, m := range p.Models {
		if m.ModelID == modelID {
			return true
		}
	}
	return false
}

// FindPackageForDevice resolves the package applicable to a device.
// Merchant-scoped candidates are searched before platform-wide ones, and
// within each pass the caller-provided candidate order is authoritative.
func FindPackageForDevice(device Device, candidates []*DevicePackage) *DevicePackage {
	for _, p := range candidates {
		if p == nil || p.MerchantID == nil {
			continue
		}
		if *p.MerchantID == device.MerchantID && p.SupportsModel(device.ModelID) {
			return p
		}
	}
	for _, p := range candidates {
		if p == nil || p.MerchantID != nil {
			continue
		}
		if p.SupportsModel(device.ModelID) {
			return p
		}
	}
	return nil
}

// ChooseOpenRule resolves the duration the opening charge covers. For
// bind-activated packages that is the bind rule; otherwise the first recharge
// rule flagged as opening rule wins, regardless of later flagged rules.
func ChooseOpenRule(p *DevicePackage) *period.Rule {
	if p == nil {
		return nil
	}
	if p.IsRelatedOpen {
		if p.BindRule == nil {
			return nil
		}
		return &period.Rule{Duration: p.BindRule.Duration, Unit: p.BindRule.TimeUnit}
	}
	for _, rule := range p.RechargeRules {
		if rule.IsOpeningRule {
			return &period.Rule{Duration: rule.Duration, Unit: rule.TimeUnit}
		}
	}
	return nil
}

// BuildTrackerPackageRelations resolves every device independently,
// preserving input order. Devices without a match keep a nil package.
func BuildTrackerPackageRelations(devices []Device, packages []*DevicePackage) []TrackerPackageRelation {
	relations := make([]TrackerPackageRelation, 0, len(devices))
	for _, device := range devices {
		relations = append(relations, TrackerPackageRelation{
			Device:  device,
			Package: FindPackageForDevice(device, packages),
		})
	}
	return relations
}
