package sdk

import (
	"context"
	"fmt"
)

const (
	cmsPagePath = "/v1/content/{0}/{1}"
	emailPath   = "/v1.1/email"

	// DefaultLanguage is used by PageFromCMS when no language is given.
	DefaultLanguage = "en"
)

// PageFromCMS fetches a CMS page; valid languages are "en" and "fr"
func (c *client) PageFromCMS(ctx context.Context, page, language string) (*Response, error) {
	if language == "" {
		language = DefaultLanguage
	}
	return c.get(ctx, buildPath(cmsPagePath, page, language), nil)
}

// PostEmail sends a templated email
func (c *client) PostEmail(ctx context.Context, email Email) (*Response, error) {
	params, err := email.params()
	if err != nil {
		return nil, NewError(ErrorTypeValidation, fmt.Sprintf("failed to encode email options: %v", err), err)
	}
	return c.post(ctx, emailPath, params)
}
