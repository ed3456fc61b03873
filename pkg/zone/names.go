package zone

import (
	"fmt"
	"strings"
)

// Names of generated zones and access lists.
// Equal input must always result in equal names, because these
// names are used by filter trace of data plane analysis.

const securityLevelPrefix = "~SECURITY_LEVEL_"

func SecurityLevelZoneName(level int) string {
	return fmt.Sprintf("%s%d~", securityLevelPrefix, level)
}

func isSecurityLevelZoneName(name string) bool {
	return strings.HasPrefix(name, securityLevelPrefix)
}

func ZoneOutgoingACLName(zone string) string {
	return "~ZONE_OUTGOING_ACL~" + zone
}

func CombinedOutgoingACLName(intf string) string {
	return "~COMBINED_OUTGOING_ACL~" + intf
}

func ZonePairACLName(src, dst string) string {
	return "~ZONE_PAIR_ACL~" + src + "~" + dst
}
