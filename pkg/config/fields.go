package config

// FieldPolicyConfig declares which registration form fields are shown and
// which are mandatory. Email and password are always both; the rest follow
// the deployment's preference.
type FieldPolicyConfig struct {
	EnableUsername    bool
	RequireUsername   bool
	EnableGivenName   bool
	RequireGivenName  bool
	EnableMiddleName  bool
	RequireMiddleName bool
	EnableSurname     bool
	RequireSurname    bool
}

func loadFieldPolicyConfig() FieldPolicyConfig {
	return FieldPolicyConfig{
		EnableUsername:    getEnvBool("GATEHOUSE_ENABLE_USERNAME", false),
		RequireUsername:   getEnvBool("GATEHOUSE_REQUIRE_USERNAME", false),
		EnableGivenName:   getEnvBool("GATEHOUSE_ENABLE_GIVEN_NAME", true),
		RequireGivenName:  getEnvBool("GATEHOUSE_REQUIRE_GIVEN_NAME", true),
		EnableMiddleName:  getEnvBool("GATEHOUSE_ENABLE_MIDDLE_NAME", false),
		RequireMiddleName: getEnvBool("GATEHOUSE_REQUIRE_MIDDLE_NAME", false),
		EnableSurname:     getEnvBool("GATEHOUSE_ENABLE_SURNAME", true),
		RequireSurname:    getEnvBool("GATEHOUSE_REQUIRE_SURNAME", true),
	}
}

// validate rejects policies that require a field they do not show.
func (f *FieldPolicyConfig) validate() error {
	type field struct {
		name             string
		enabled, require bool
	}
	for _, fl := range []field{
		{"username", f.EnableUsername, f.RequireUsername},
		{"given_name", f.EnableGivenName, f.RequireGivenName},
		{"middle_name", f.EnableMiddleName, f.RequireMiddleName},
		{"surname", f.EnableSurname, f.RequireSurname},
	} {
		if fl.require && !fl.enabled {
			return ErrRegistry.New(CodeInvalidSetting).
				WithDetail("field", fl.name).
				WithDetail("reason", "field is required but not enabled")
		}
	}
	return nil
}
