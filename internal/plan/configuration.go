package plan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

const (
	configurationLoadErrorTemplateConstant        = "failed to load migration plan: %w"
	configurationParseErrorTemplateConstant       = "failed to parse migration plan: %w"
	configurationPathRequiredMessageConstant      = "migration plan path must be provided"
	configurationEmptyStepsMessageConstant        = "migration plan must define at least one step"
	configurationOperationMissingTemplateConstant = "plan step %d missing operation name"
	configurationUnknownOperationTemplateConstant = "plan step %d uses unsupported operation %q"
	optionsDecodeErrorTemplateConstant            = "plan step %d (%s) has invalid options: %w"
	optionsDecoderErrorTemplateConstant           = "unable to construct options decoder: %w"
	listSeparatorConstant                         = ","
	mapstructureTagNameConstant                   = "mapstructure"
)

// Operation identifies a migration workflow a plan step runs.
type Operation string

// Supported plan operations.
const (
	OperationDuplicate        Operation = Operation("duplicate")
	OperationMarkPairs        Operation = Operation("mark-pairs")
	OperationForceDeprecate   Operation = Operation("force-deprecate")
	OperationRemoveDeprecated Operation = Operation("remove-deprecated")
)

var supportedOperations = map[Operation]struct{}{
	OperationDuplicate:        {},
	OperationMarkPairs:        {},
	OperationForceDeprecate:   {},
	OperationRemoveDeprecated: {},
}

// ErrPathRequired indicates that no plan path was supplied.
var ErrPathRequired = errors.New(configurationPathRequiredMessageConstant)

// ErrEmptyPlan indicates a plan without steps.
var ErrEmptyPlan = errors.New(configurationEmptyStepsMessageConstant)

// Configuration is a loaded migration plan.
type Configuration struct {
	Steps []StepConfiguration `yaml:"steps"`

	// BaseDirectory resolves relative paths in step options.
	BaseDirectory string `yaml:"-"`
}

// StepConfiguration associates an operation with declarative options.
type StepConfiguration struct {
	Operation Operation      `yaml:"operation"`
	Options   map[string]any `yaml:"with"`
}

// DuplicateStepOptions are the options of a duplicate step.
type DuplicateStepOptions struct {
	Sources     []string `mapstructure:"sources"`
	Destination string   `mapstructure:"to"`
	DryRun      bool     `mapstructure:"dry_run"`
}

// FilesStepOptions are the options of mark-pairs, force-deprecate and remove-deprecated steps.
type FilesStepOptions struct {
	Files []string `mapstructure:"files"`
	Yes   bool     `mapstructure:"yes"`
}

// LoadConfiguration reads a plan from disk and validates its steps.
func LoadConfiguration(filePath string) (Configuration, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return Configuration{}, ErrPathRequired
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Configuration{}, fmt.Errorf(configurationLoadErrorTemplateConstant, readError)
	}

	configuration, parseError := ParseConfiguration(contentBytes)
	if parseError != nil {
		return Configuration{}, parseError
	}

	absolutePath, absoluteError := filepath.Abs(trimmedPath)
	if absoluteError != nil {
		return Configuration{}, fmt.Errorf(configurationLoadErrorTemplateConstant, absoluteError)
	}
	configuration.BaseDirectory = filepath.Dir(absolutePath)
	return configuration, nil
}

// ParseConfiguration decodes and validates plan YAML.
func ParseConfiguration(content []byte) (Configuration, error) {
	var configuration Configuration
	if unmarshalError := yaml.Unmarshal(content, &configuration); unmarshalError != nil {
		return Configuration{}, fmt.Errorf(configurationParseErrorTemplateConstant, unmarshalError)
	}

	if len(configuration.Steps) == 0 {
		return Configuration{}, ErrEmptyPlan
	}

	for stepIndex := range configuration.Steps {
		trimmedOperation := Operation(strings.TrimSpace(string(configuration.Steps[stepIndex].Operation)))
		if len(trimmedOperation) == 0 {
			return Configuration{}, fmt.Errorf(configurationOperationMissingTemplateConstant, stepIndex+1)
		}
		if _, supported := supportedOperations[trimmedOperation]; !supported {
			return Configuration{}, fmt.Errorf(configurationUnknownOperationTemplateConstant, stepIndex+1, trimmedOperation)
		}
		configuration.Steps[stepIndex].Operation = trimmedOperation
	}

	return configuration, nil
}

// DecodeOptions converts the step's free-form options into target, accepting comma
// separated strings for list fields and rejecting unknown keys.
func (step StepConfiguration) DecodeOptions(stepIndex int, target any) error {
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToSliceHookFunc(listSeparatorConstant),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		TagName:          mapstructureTagNameConstant,
		Result:           target,
	})
	if decoderError != nil {
		return fmt.Errorf(optionsDecoderErrorTemplateConstant, decoderError)
	}
	if decodeError := decoder.Decode(step.Options); decodeError != nil {
		return fmt.Errorf(optionsDecodeErrorTemplateConstant, stepIndex+1, step.Operation, decodeError)
	}
	return nil
}
