// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

// Params are the selection options shared by every repository.
type Params struct {
	Accounts []string `json:"accounts"`
	Regions  []string `json:"regions"`
}

// Repositories is the collection returned by the repository listing API.
type Repositories struct {
	Params Params             `json:"params"`
	Repos  []RepositoryDetail `json:"repos"`
}

// Props describes a deployable component as registered on the listing API.
type Props struct {
	// App is the unique name of the repository.
	App string `json:"app" validate:"required"`

	// Type is the kind of component (ecr, lambda, step function...).
	Type string `json:"type" validate:"required"`

	// Bucket is used by components deployed from a bucket.
	// (Optional)
	Bucket string `json:"bucket,omitempty"`

	// Name1 through Name4 are the component names used in each deployment step.
	// (Optional)
	Name1 string `json:"name1,omitempty"`
	Name2 string `json:"name2,omitempty"`
	Name3 string `json:"name3,omitempty"`
	Name4 string `json:"name4,omitempty"`

	Stage *int `json:"stage,omitempty"`

	// Link is the URL of the last build.
	// (Optional)
	Link string `json:"link,omitempty"`
}

// SourceConfig is where the source code of a repository lives.
type SourceConfig struct {
	URL   string `json:"url"`
	Clone string `json:"clone"`
}

// Detail is the deployment target of a build.
type Detail struct {
	Account string `json:"account" validate:"required"`
	Region  string `json:"region" validate:"required"`
	Branch  string `json:"branch" validate:"required"`
}

// RepositoryDetail is a single repository of the collection. It is replaced
// wholesale on every refresh.
type RepositoryDetail struct {
	Props    Props        `json:"props"`
	Config   SourceConfig `json:"config"`
	Branches []string     `json:"branches"`
	Detail   *Detail      `json:"detail,omitempty"`
}

// Identity returns the application name that identifies the repository.
func (r RepositoryDetail) Identity() string {
	return r.Props.App
}

// HasBranch reports whether branch is one of the repository branches.
func (r RepositoryDetail) HasBranch(branch string) bool {
	for _, b := range r.Branches {
		if b == branch {
			return true
		}
	}
	return false
}

// LookupResult is a single repository along with the shared params.
type LookupResult struct {
	App    RepositoryDetail `json:"app"`
	Params Params           `json:"params"`
}

// RepositoryState is the live build/deployment status of one repository.
type RepositoryState struct {
	State int    `json:"state"`
	Link  string `json:"link"`
}

// BuildRequest is the payload sent to the build trigger API.
type BuildRequest struct {
	Props  Props        `json:"props" validate:"required"`
	Config SourceConfig `json:"config"`
	Detail Detail       `json:"detail" validate:"required"`
}

// BuildResponse is returned by the build trigger API on success.
type BuildResponse struct {
	ID      string `json:"id"`
	Link    string `json:"link"`
	Message string `json:"message"`
}
