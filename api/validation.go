// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/xmidt-org/repodeck/model"
)

// AppFormatRegexSource is the default format of repository names.
const AppFormatRegexSource = "^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$"

// defaultFilterMaxLength caps the size of the listing filter.
const defaultFilterMaxLength = 128

var errRegexCompilation = errors.New("regex could not be compiled")

var (
	errInvalidApp       = BadRequestErr{Message: "Invalid app format."}
	errFilterTooLong    = BadRequestErr{Message: "Filter is too long."}
	errUnknownBranch    = BadRequestErr{Message: "Branch does not exist on the repository."}
	errUnknownAccount   = BadRequestErr{Message: "Account is not one of the available accounts."}
	errUnknownRegion    = BadRequestErr{Message: "Region is not one of the available regions."}
	errMissingBuildArgs = BadRequestErr{Message: "Account, region and branch are required."}
)

// UserInputValidationConfig is the configurable part of request validation.
type UserInputValidationConfig struct {
	AppFormatRegex  string
	FilterMaxLength int
}

type transportConfig struct {
	AppFormatRegex  *regexp.Regexp
	FilterMaxLength int
	Validate        *validator.Validate
}

func newTransportConfig(v UserInputValidationConfig) (*transportConfig, error) {
	if v.FilterMaxLength <= 0 {
		v.FilterMaxLength = defaultFilterMaxLength
	}

	source := AppFormatRegexSource
	if len(v.AppFormatRegex) > 0 {
		source = v.AppFormatRegex
	}
	appRegex, err := regexp.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("App %w: %v", errRegexCompilation, err)
	}

	return &transportConfig{
		AppFormatRegex:  appRegex,
		FilterMaxLength: v.FilterMaxLength,
		Validate:        validator.New(),
	}, nil
}

func (c *transportConfig) validateApp(app string) error {
	if !c.AppFormatRegex.MatchString(app) {
		return errInvalidApp
	}
	return nil
}

// validateBuild checks a build request against the repository it targets.
// The branch must be one of the repository branches and the account and
// region must be among the shared params.
func validateBuild(v *validator.Validate, detail model.Detail, repo model.LookupResult) error {
	if err := v.Struct(detail); err != nil {
		return errMissingBuildArgs
	}
	if !repo.App.HasBranch(detail.Branch) {
		return errUnknownBranch
	}
	if !slices.Contains(repo.Params.Accounts, detail.Account) {
		return errUnknownAccount
	}
	if !slices.Contains(repo.Params.Regions, detail.Region) {
		return errUnknownRegion
	}
	return nil
}
