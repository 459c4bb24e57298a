package stride

import "github.com/xkilldash9x/solarsec-cli/api/schemas"

// template is one canned threat for a component type.
type template struct {
	category    schemas.StrideCategory
	title       string
	description string
	vector      string
	impact      string
	likelihood  int
	severity    int
	mitigations []string
}

// templates is the per-type dispatch table. Types without an entry produce
// no threats.
var templates = map[schemas.ComponentType][]template{
	schemas.ComponentSolarInverter: {
		{
			category:    schemas.StrideSpoofing,
			title:       "Inverter Identity Spoofing",
			description: "Attacker impersonates legitimate inverter to inject malicious commands",
			vector:      "Network protocol manipulation",
			impact:      "Unauthorized control of power generation",
			likelihood:  3,
			severity:    4,
			mitigations: []string{
				"Implement device certificates",
				"Use cryptographic device authentication",
				"Monitor for unusual device behavior",
			},
		},
		{
			category:    schemas.StrideTampering,
			title:       "Firmware Tampering",
			description: "Malicious modification of inverter firmware",
			vector:      "Insecure firmware update mechanism",
			impact:      "Complete device compromise",
			likelihood:  2,
			severity:    5,
			mitigations: []string{
				"Implement code signing for firmware",
				"Secure boot process",
				"Firmware integrity checks",
			},
		},
		{
			category:    schemas.StrideDenialOfService,
			title:       "Inverter Service Disruption",
			description: "Flooding inverter with requests to cause service disruption",
			vector:      "Network flooding attacks",
			impact:      "Loss of power generation capacity",
			likelihood:  4,
			severity:    3,
			mitigations: []string{
				"Implement rate limiting",
				"Network traffic filtering",
				"DDoS protection mechanisms",
			},
		},
		{
			category:    schemas.StrideInformationDisclosure,
			title:       "Power Generation Data Exposure",
			description: "Unauthorized access to sensitive power generation data",
			vector:      "Insecure data transmission",
			impact:      "Competitive intelligence theft",
			likelihood:  3,
			severity:    2,
			mitigations: []string{
				"Encrypt all data transmissions",
				"Implement access controls",
				"Data classification and handling procedures",
			},
		},
	},
	schemas.ComponentAPIEndpoint: {
		{
			category:    schemas.StrideSpoofing,
			title:       "API Authentication Bypass",
			description: "Attacker bypasses API authentication mechanisms",
			vector:      "Weak authentication implementation",
			impact:      "Unauthorized API access",
			likelihood:  3,
			severity:    4,
			mitigations: []string{
				"Implement strong authentication (OAuth 2.0, JWT)",
				"Multi-factor authentication",
				"Regular security audits",
			},
		},
		{
			category:    schemas.StrideTampering,
			title:       "API Request Manipulation",
			description: "Modification of API requests to perform unauthorized actions",
			vector:      "Man-in-the-middle attacks",
			impact:      "Unauthorized system control",
			likelihood:  2,
			severity:    4,
			mitigations: []string{
				"Use HTTPS for all API communications",
				"Implement request signing",
				"Input validation and sanitization",
			},
		},
		{
			category:    schemas.StrideElevationOfPrivilege,
			title:       "API Privilege Escalation",
			description: "Attacker gains higher privileges than intended",
			vector:      "Authorization bypass vulnerabilities",
			impact:      "Administrative access to system",
			likelihood:  2,
			severity:    5,
			mitigations: []string{
				"Implement proper authorization checks",
				"Principle of least privilege",
				"Regular access reviews",
			},
		},
	},
	schemas.ComponentCommunicationGateway: {
		{
			category:    schemas.StrideSpoofing,
			title:       "Gateway Impersonation",
			description: "Attacker impersonates communication gateway",
			vector:      "Network protocol vulnerabilities",
			impact:      "Unauthorized network access",
			likelihood:  3,
			severity:    4,
			mitigations: []string{
				"Device certificates and PKI",
				"Network access control",
				"Regular device authentication",
			},
		},
		{
			category:    schemas.StrideDenialOfService,
			title:       "Gateway Resource Exhaustion",
			description: "Overwhelming gateway with traffic to cause failure",
			vector:      "Resource exhaustion attacks",
			impact:      "Communication network disruption",
			likelihood:  3,
			severity:    4,
			mitigations: []string{
				"Implement quality of service controls",
				"Resource monitoring and alerting",
				"Traffic shaping and prioritization",
			},
		},
	},
}

// controlReduction is how far a declared control lowers the likelihood of
// threats in each category.
type controlReduction struct {
	keyword    string
	reductions map[schemas.StrideCategory]int
}

// controlReductions is ordered so that matching is deterministic.
var controlReductions = []controlReduction{
	{"encryption", map[schemas.StrideCategory]int{
		schemas.StrideInformationDisclosure: 2,
		schemas.StrideTampering:             1,
	}},
	{"authentication", map[schemas.StrideCategory]int{
		schemas.StrideSpoofing:             2,
		schemas.StrideElevationOfPrivilege: 1,
	}},
	{"access_control", map[schemas.StrideCategory]int{
		schemas.StrideElevationOfPrivilege: 2,
		schemas.StrideSpoofing:             1,
	}},
	{"rate_limiting", map[schemas.StrideCategory]int{
		schemas.StrideDenialOfService: 2,
	}},
	{"input_validation", map[schemas.StrideCategory]int{
		schemas.StrideTampering: 1,
	}},
	{"logging", map[schemas.StrideCategory]int{
		schemas.StrideRepudiation: 2,
	}},
	{"monitoring", map[schemas.StrideCategory]int{
		schemas.StrideDenialOfService: 1,
		schemas.StrideSpoofing:        1,
	}},
}

var (
	encryptionMitigations = []string{
		"Implement TLS/SSL encryption",
		"Use VPN for sensitive communications",
		"Implement end-to-end encryption",
	}
	authMitigations = []string{
		"Implement strong authentication",
		"Use mutual TLS authentication",
		"Deploy certificate-based authentication",
	}
)

// TemplateCount reports how many templates exist for a component type.
func TemplateCount(t schemas.ComponentType) int {
	return len(templates[t])
}
