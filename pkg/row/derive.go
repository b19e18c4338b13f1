package row

import (
	"github.com/newtron-network/acipush/pkg/schema"
	"github.com/newtron-network/acipush/pkg/util"
)

// Scope flag columns of bridge-domain subnet rows.
const (
	FieldPrivateToVRF         = "private_to_vrf"
	FieldAdvertisedExternally = "advertised_externally"
	FieldSharedBetweenVRFs    = "shared_between_vrfs"
	FieldScope                = "scope"
)

// deriver computes fields from a row's normalized fields.
type deriver func(fields map[string]string) map[string]string

var derivers = map[schema.EntityType]deriver{
	schema.EntityBDSubnet: deriveSubnetScope,
}

func derive(t schema.EntityType, fields map[string]string) map[string]string {
	d, ok := derivers[t]
	if !ok {
		return map[string]string{}
	}
	return d(fields)
}

func deriveSubnetScope(fields map[string]string) map[string]string {
	return map[string]string{FieldScope: SubnetScope(fields)}
}

// SubnetScope derives the subnet scope from its three flag columns.
// Order matters: private sets the scope, public replaces it, and shared is
// appended to whatever the first two produced.
func SubnetScope(fields map[string]string) string {
	scope := ""
	if util.IsEnabled(fields[FieldPrivateToVRF]) {
		scope = "private"
	}
	if util.IsEnabled(fields[FieldAdvertisedExternally]) {
		scope = "public"
	}
	if util.IsEnabled(fields[FieldSharedBetweenVRFs]) {
		scope = util.AddToCSV(scope, "shared")
	}
	return scope
}
