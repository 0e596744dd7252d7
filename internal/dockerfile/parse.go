// Package dockerfile reads the stage structure of generated and
// repository Dockerfiles.
package dockerfile

import (
	"fmt"
	"strings"

	"github.com/moby/buildkit/frontend/dockerfile/instructions"
	"github.com/moby/buildkit/frontend/dockerfile/parser"
	"github.com/moby/buildkit/frontend/dockerfile/shell"
)

// Dockerfile represents a parsed Dockerfile.
type Dockerfile struct {
	// Raw is the original Dockerfile content.
	Raw string

	// Preamble holds ARG instructions before the first FROM.
	Preamble *Preamble

	// Stages is the ordered list of build stages.
	Stages []*Stage

	// StagesByTarget maps stage names to stages for quick lookup.
	StagesByTarget map[string]*Stage
}

// Preamble holds instructions before the first FROM (typically ARG).
type Preamble struct {
	Args []instructions.KeyValuePairOptional
}

// Stage represents a single build stage (FROM ... to next FROM or EOF).
type Stage struct {
	// Image is the base image (FROM value).
	Image string

	// Target is the stage name (AS value), empty if unnamed.
	Target string

	// Envs are ENV instructions in this stage.
	Envs []instructions.KeyValuePair

	// Args are ARG instructions in this stage.
	Args []instructions.KeyValuePairOptional

	// Users are USER instructions in this stage.
	Users []string
}

// Parse parses Dockerfile content into a structured Dockerfile.
func Parse(content string) (*Dockerfile, error) {
	result, err := parser.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parsing Dockerfile: %w", err)
	}

	df := &Dockerfile{
		Raw:            content,
		Preamble:       &Preamble{},
		StagesByTarget: make(map[string]*Stage),
	}

	stages, metaArgs, err := instructions.Parse(result.AST, nil)
	if err != nil {
		return nil, fmt.Errorf("parsing instructions: %w", err)
	}

	// Preamble: ARGs before the first FROM.
	for _, arg := range metaArgs {
		df.Preamble.Args = append(df.Preamble.Args, arg.Args...)
	}

	for _, s := range stages {
		stage := &Stage{
			Image:  s.BaseName,
			Target: s.Name,
		}

		for _, cmd := range s.Commands {
			switch c := cmd.(type) {
			case *instructions.EnvCommand:
				stage.Envs = append(stage.Envs, c.Env...)
			case *instructions.ArgCommand:
				stage.Args = append(stage.Args, c.Args...)
			case *instructions.UserCommand:
				stage.Users = append(stage.Users, c.User)
			}
		}

		df.Stages = append(df.Stages, stage)
		if stage.Target != "" {
			df.StagesByTarget[stage.Target] = stage
		}
	}

	return df, nil
}

// Targets returns the stage names in declaration order, skipping unnamed
// stages.
func (d *Dockerfile) Targets() []string {
	var targets []string
	for _, s := range d.Stages {
		if s.Target != "" {
			targets = append(targets, s.Target)
		}
	}
	return targets
}

// DefaultTarget returns the stage built when no target is selected: the
// last one.
func (d *Dockerfile) DefaultTarget() string {
	if len(d.Stages) == 0 {
		return ""
	}
	return d.Stages[len(d.Stages)-1].Target
}

// PreambleArg returns the default of an ARG declared before the first FROM.
func (d *Dockerfile) PreambleArg(key string) (string, bool) {
	if d.Preamble == nil {
		return "", false
	}
	for _, arg := range d.Preamble.Args {
		if arg.Key == key && arg.Value != nil {
			return *arg.Value, true
		}
	}
	return "", false
}

// FindBaseImage resolves the base image for the given target stage,
// expanding ARG variables and following stage references.
// If target is empty, the last stage is used.
func (d *Dockerfile) FindBaseImage(buildArgs map[string]string, target string) string {
	stage := d.findTargetStage(target)
	if stage == nil {
		return ""
	}

	return d.expandVariables(stage.Image, &envResolver{buildArgs: buildArgs, preamble: d.Preamble}, make(map[string]bool))
}

// FindUserStatement returns the last USER instruction in the target stage
// chain, resolving build args and ARG defaults.
// Returns empty string if no USER found.
func (d *Dockerfile) FindUserStatement(buildArgs map[string]string, target string) string {
	stage := d.findTargetStage(target)
	if stage == nil {
		return ""
	}

	return d.findUser(stage, buildArgs, make(map[string]bool))
}

// findTargetStage returns the stage matching the target name,
// or the last stage if target is empty.
func (d *Dockerfile) findTargetStage(target string) *Stage {
	if len(d.Stages) == 0 {
		return nil
	}

	if target == "" {
		return d.Stages[len(d.Stages)-1]
	}

	if stage, ok := d.StagesByTarget[target]; ok {
		return stage
	}

	return nil
}

// findUser walks the stage chain to find the last USER instruction.
func (d *Dockerfile) findUser(stage *Stage, buildArgs map[string]string, seen map[string]bool) string {
	if stage == nil {
		return ""
	}

	// Prevent circular references.
	key := stage.Image
	if stage.Target != "" {
		key = stage.Target
	}
	if seen[key] {
		return ""
	}
	seen[key] = true

	if len(stage.Users) > 0 {
		user := stage.Users[len(stage.Users)-1]
		env := &envResolver{
			buildArgs: buildArgs,
			stageArgs: stage.Args,
			preamble:  d.Preamble,
		}
		return d.expandVariables(user, env, make(map[string]bool))
	}

	// Walk to parent stage if the base image references another stage.
	if parent, ok := d.StagesByTarget[stage.Image]; ok {
		return d.findUser(parent, buildArgs, seen)
	}

	return ""
}

// expandVariables expands ${VAR} references in a string and follows
// references to other stages.
func (d *Dockerfile) expandVariables(value string, env *envResolver, seenStages map[string]bool) string {
	lex := shell.NewLex('\\')
	result, _, err := lex.ProcessWord(value, env)
	if err != nil {
		return value
	}

	// If the result references another stage, check for circular refs.
	if parent, ok := d.StagesByTarget[result]; ok && !seenStages[result] {
		seenStages[result] = true
		return d.expandVariables(parent.Image, env, seenStages)
	}

	return result
}

// envResolver implements shell.EnvGetter for variable resolution.
type envResolver struct {
	buildArgs map[string]string
	stageArgs []instructions.KeyValuePairOptional
	preamble  *Preamble
}

func (e *envResolver) Get(key string) (string, bool) {
	// 1. Build args override everything.
	if v, ok := e.buildArgs[key]; ok {
		return v, true
	}

	// 2. ARG defaults declared in the stage itself.
	for _, arg := range e.stageArgs {
		if arg.Key == key && arg.Value != nil {
			return *arg.Value, true
		}
	}

	// 3. Preamble ARG defaults.
	if e.preamble != nil {
		for _, arg := range e.preamble.Args {
			if arg.Key == key && arg.Value != nil {
				return *arg.Value, true
			}
		}
	}

	return "", false
}

func (e *envResolver) Keys() []string {
	keys := make(map[string]bool)
	for k := range e.buildArgs {
		keys[k] = true
	}
	for _, arg := range e.stageArgs {
		keys[arg.Key] = true
	}
	if e.preamble != nil {
		for _, arg := range e.preamble.Args {
			keys[arg.Key] = true
		}
	}

	result := make([]string, 0, len(keys))
	for k := range keys {
		result = append(result, k)
	}
	return result
}
