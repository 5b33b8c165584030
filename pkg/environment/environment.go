package environment

import "strings"

// Environment represents application environment.
type Environment string

const (
	// Development for local development.
	Development Environment = "development"
	// Staging for pre-production deployments.
	Staging Environment = "staging"
	// Production for live deployments.
	Production Environment = "production"
	// Test for automated test runs.
	Test Environment = "test"
)

// Parse converts a raw value (usually APP_ENV) into an Environment.
// Short aliases are accepted; empty or unknown values map to Development.
func Parse(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod":
		return Production
	case "staging", "stage":
		return Staging
	case "test", "testing":
		return Test
	default:
		return Development
	}
}

func (e Environment) String() string { return string(e) }

func (e Environment) IsProduction() bool  { return e == Production }
func (e Environment) IsStaging() bool     { return e == Staging }
func (e Environment) IsDevelopment() bool { return e == Development }
func (e Environment) IsTest() bool        { return e == Test }
