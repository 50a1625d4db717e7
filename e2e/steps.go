package e2e

import (
	"github.com/cucumber/godog"

	"addressbook/e2e/steps/common"
	"addressbook/e2e/steps/contacts"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (health, generic assertions)
	common.RegisterSteps(ctx, tc)

	// Register contact-specific steps
	contacts.RegisterSteps(ctx, tc)
}
