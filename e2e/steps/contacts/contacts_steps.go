package contacts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(ctx context.Context, path string) error
	POST(ctx context.Context, path string, body any, authorized bool) error
	PUT(ctx context.Context, path string, body any, authorized bool) error
	DELETE(ctx context.Context, path string, authorized bool) error
	LastBody() []byte
	ResponseField(field string) (any, error)
	Save(name, value string)
	Saved(name string) (string, error)
}

// RegisterSteps registers contact step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &contactSteps{tc: tc}

	ctx.Step(`^I create the contact "([^"]*)" "([^"]*)" living in "([^"]*)", "([^"]*)" (\d+)$`, steps.createContact)
	ctx.Step(`^I create the contact "([^"]*)" "([^"]*)" without a token$`, steps.createWithoutToken)
	ctx.Step(`^I create the contact "([^"]*)" "([^"]*)" with zip (\d+)$`, steps.createWithZip)
	ctx.Step(`^I save the contact id$`, steps.saveContactID)
	ctx.Step(`^I fetch the saved contact$`, steps.fetchSaved)
	ctx.Step(`^I move the saved contact to "([^"]*)"$`, steps.moveSaved)
	ctx.Step(`^I delete the saved contact$`, steps.deleteSaved)
	ctx.Step(`^I search for last names starting with "([^"]*)"$`, steps.search)
	ctx.Step(`^the results should include "([^"]*)"$`, steps.resultsInclude)
	ctx.Step(`^the results should not include "([^"]*)"$`, steps.resultsExclude)
}

type contactSteps struct {
	tc TestContext
}

func contactBody(first, last, city, state string, zip int) map[string]any {
	return map[string]any{
		"first_name": first,
		"last_name":  last,
		"street":     "1 Feature Way",
		"city":       city,
		"state":      state,
		"zip":        zip,
		"phone":      "555-555-0100",
		"email":      strings.ToLower(first+"."+last) + "@example.com",
	}
}

func (s *contactSteps) createContact(ctx context.Context, first, last, city, state string, zip int) error {
	return s.tc.POST(ctx, "/contacts", contactBody(first, last, city, state, zip), true)
}

func (s *contactSteps) createWithoutToken(ctx context.Context, first, last string) error {
	return s.tc.POST(ctx, "/contacts", contactBody(first, last, "Springfield", "IL", 62701), false)
}

func (s *contactSteps) createWithZip(ctx context.Context, first, last string, zip int) error {
	return s.tc.POST(ctx, "/contacts", contactBody(first, last, "Springfield", "IL", zip), true)
}

func (s *contactSteps) saveContactID(ctx context.Context) error {
	value, err := s.tc.ResponseField("id")
	if err != nil {
		return err
	}
	s.tc.Save("contact_id", fmt.Sprint(value))

	body := map[string]any{}
	if err := json.Unmarshal(s.tc.LastBody(), &body); err != nil {
		return err
	}
	delete(body, "id")
	delete(body, "display")
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	s.tc.Save("contact_body", string(raw))
	return nil
}

func (s *contactSteps) fetchSaved(ctx context.Context) error {
	contactID, err := s.tc.Saved("contact_id")
	if err != nil {
		return err
	}
	return s.tc.GET(ctx, "/contacts/"+contactID)
}

func (s *contactSteps) moveSaved(ctx context.Context, city string) error {
	contactID, err := s.tc.Saved("contact_id")
	if err != nil {
		return err
	}
	raw, err := s.tc.Saved("contact_body")
	if err != nil {
		return err
	}
	body := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return err
	}
	body["city"] = city
	return s.tc.PUT(ctx, "/contacts/"+contactID, body, true)
}

func (s *contactSteps) deleteSaved(ctx context.Context) error {
	contactID, err := s.tc.Saved("contact_id")
	if err != nil {
		return err
	}
	return s.tc.DELETE(ctx, "/contacts/"+contactID, true)
}

func (s *contactSteps) search(ctx context.Context, prefix string) error {
	return s.tc.GET(ctx, "/contacts?prefix="+url.QueryEscape(prefix))
}

func (s *contactSteps) displays() ([]string, error) {
	var resp struct {
		Contacts []struct {
			Display string `json:"display"`
		} `json:"contacts"`
	}
	if err := json.Unmarshal(s.tc.LastBody(), &resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	names := make([]string, 0, len(resp.Contacts))
	for _, c := range resp.Contacts {
		names = append(names, c.Display)
	}
	return names, nil
}

func (s *contactSteps) resultsInclude(ctx context.Context, display string) error {
	names, err := s.displays()
	if err != nil {
		return err
	}
	for _, n := range names {
		if n == display {
			return nil
		}
	}
	return fmt.Errorf("%q not in results %v", display, names)
}

func (s *contactSteps) resultsExclude(ctx context.Context, display string) error {
	names, err := s.displays()
	if err != nil {
		return err
	}
	for _, n := range names {
		if n == display {
			return fmt.Errorf("%q unexpectedly in results", display)
		}
	}
	return nil
}
