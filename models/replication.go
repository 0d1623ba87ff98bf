// ABOUTME: Cross-datacenter replication classification from namespace write counters.
// ABOUTME: Decides active-passive vs active-active per namespace name across regions.

package models

import (
	"math"
	"sort"
)

// varianceThreshold is the relative spread below which write counters are
// considered symmetric enough for active-passive classification.
const varianceThreshold = 0.05

// Replication mode labels used on the wire.
const (
	ReplicationAP           = "AP"
	ReplicationAA           = "AA"
	ReplicationUndetermined = "—"
)

// WriteMode classifies a single namespace instance's write pattern.
type WriteMode int

const (
	ModeUndefined WriteMode = iota
	ModeAP
	ModeAA
)

func (m WriteMode) String() string {
	switch m {
	case ModeAP:
		return ReplicationAP
	case ModeAA:
		return ReplicationAA
	default:
		return ""
	}
}

// ClassifyWrites compares client and XDR write counters for one namespace
// instance. A namespace with no XDR traffic (or unparsable counters) has no
// defined mode and contributes nothing to classification.
func ClassifyWrites(clientWrites, xdrWrites float64) WriteMode {
	if math.IsNaN(clientWrites) || math.IsNaN(xdrWrites) || xdrWrites <= 0 {
		return ModeUndefined
	}

	base := clientWrites
	if base == 0 {
		base = xdrWrites
	}
	if base == 0 {
		base = 1
	}

	variance := math.Abs(xdrWrites-clientWrites) / base
	if variance <= varianceThreshold {
		return ModeAP
	}
	return ModeAA
}

// RegionLicense is one region's contribution to a namespace's classification.
type RegionLicense struct {
	Region    string  `json:"region"`
	LicenseGB float64 `json:"license_gb"`
	HasXDR    bool    `json:"has_xdr"`
	Mode      string  `json:"mode,omitempty"`
}

// NamespaceReplication is the classification result for one namespace name.
// For XDR namespaces OverallLicenseGB is the max across regions (the same
// data replicated; max avoids double counting). Standalone namespaces are
// genuinely distinct per region, so their overall figure is a plain sum and
// Replication is left empty.
type NamespaceReplication struct {
	Name             string          `json:"name"`
	XDR              bool            `json:"xdr"`
	Replication      string          `json:"replication,omitempty"`
	OverallLicenseGB float64         `json:"overall_license_gb"`
	Regions          []RegionLicense `json:"regions"`
}

type regionBucket struct {
	licenseSum float64
	hasXDR     bool
	sawAP      bool
	sawAA      bool
}

// ClassifyReplication builds per-region license buckets for every namespace
// name found in viewable cluster results and reconciles them into a
// replication mode and overall capacity figure. Output is sorted by
// namespace name and region name, so results are independent of storage
// iteration order.
func ClassifyReplication(h *HealthCheck) []NamespaceReplication {
	// namespace name -> region name -> bucket
	buckets := make(map[string]map[string]*regionBucket)

	for _, region := range h.Regions {
		for _, cluster := range region.Clusters {
			if !cluster.Viewable() || cluster.Data == nil {
				continue
			}
			for _, ns := range cluster.Data.Namespaces {
				if ns.Name == "" {
					continue
				}
				byRegion, ok := buckets[ns.Name]
				if !ok {
					byRegion = make(map[string]*regionBucket)
					buckets[ns.Name] = byRegion
				}
				b, ok := byRegion[region.Name]
				if !ok {
					b = &regionBucket{}
					byRegion[region.Name] = b
				}

				b.licenseSum += NumericOrZero(ns.License.Usage)
				if ns.HasXDR() {
					b.hasXDR = true
				}
				switch ClassifyWrites(ns.ClientWrites.ClientWriteSuccess, ns.ClientWrites.XdrClientWriteSuccess) {
				case ModeAP:
					b.sawAP = true
				case ModeAA:
					b.sawAA = true
				}
			}
		}
	}

	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]NamespaceReplication, 0, len(names))
	for _, name := range names {
		out = append(out, reconcileNamespace(name, buckets[name]))
	}
	return out
}

// reconcileNamespace turns one namespace's per-region buckets into a final
// classification using the set of regions whose summed license is > 0.
func reconcileNamespace(name string, byRegion map[string]*regionBucket) NamespaceReplication {
	regionNames := make([]string, 0, len(byRegion))
	for rn := range byRegion {
		regionNames = append(regionNames, rn)
	}
	sort.Strings(regionNames)

	result := NamespaceReplication{Name: name}

	var withData []float64
	for _, rn := range regionNames {
		b := byRegion[rn]
		entry := RegionLicense{
			Region:    rn,
			LicenseGB: b.licenseSum,
			HasXDR:    b.hasXDR,
		}
		if b.sawAA {
			entry.Mode = ReplicationAA
		} else if b.sawAP {
			entry.Mode = ReplicationAP
		}
		result.Regions = append(result.Regions, entry)

		if b.hasXDR {
			result.XDR = true
		}
		if b.licenseSum > 0 {
			withData = append(withData, b.licenseSum)
		}
	}

	if !result.XDR {
		// Standalone: per-region data is distinct, a plain sum is correct.
		for _, v := range withData {
			result.OverallLicenseGB += v
		}
		return result
	}

	switch len(withData) {
	case 0:
		result.Replication = ReplicationUndetermined
		result.OverallLicenseGB = 0
	case 1:
		// A single observation is the conservative default case.
		result.Replication = ReplicationAP
		result.OverallLicenseGB = withData[0]
	default:
		maxV, minV := withData[0], withData[0]
		for _, v := range withData[1:] {
			if v > maxV {
				maxV = v
			}
			if v < minV {
				minV = v
			}
		}
		base := maxV
		if base == 0 {
			base = 1
		}
		variance := (maxV - minV) / base
		if variance <= varianceThreshold {
			result.Replication = ReplicationAP
		} else {
			result.Replication = ReplicationAA
		}
		result.OverallLicenseGB = maxV
	}

	return result
}
