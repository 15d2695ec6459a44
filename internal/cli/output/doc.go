// Package output renders minikv-cli replies as text, JSON or YAML.
//
// Text output follows redis-cli conventions: status replies print bare,
// bulk strings print quoted, nil prints as (nil) and errors as
// (error) <message>.
package output
