package domain

import "errors"

var ErrEnvVarNotFound = errors.New("environment variable not found")

// EnvironmentVariable is a key/value pair exposed to channel deployments.
type EnvironmentVariable struct {
	Key   string `json:"key" bson:"key"`
	Value string `json:"value" bson:"value"`
}
