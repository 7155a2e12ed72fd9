// Package plan loads YAML migration plans and replays their steps through the
// migration workflows.
package plan
