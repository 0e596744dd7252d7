package dockerfile

import (
	"strings"
	"testing"
)

func TestParse_SimpleDockerfile(t *testing.T) {
	df, err := Parse("FROM ubuntu:22.04\nRUN echo hello\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(df.Stages) != 1 {
		t.Fatalf("expected 1 stage, got %d", len(df.Stages))
	}
	if df.Stages[0].Image != "ubuntu:22.04" {
		t.Errorf("Image = %q, want %q", df.Stages[0].Image, "ubuntu:22.04")
	}
	if df.Stages[0].Target != "" {
		t.Errorf("Target = %q, want empty", df.Stages[0].Target)
	}
}

func TestParse_PreambleArgs(t *testing.T) {
	content := `ARG BASE_IMAGE=ubuntu
ARG BASE_VERSION=22.04
FROM ${BASE_IMAGE}:${BASE_VERSION}
`
	df, err := Parse(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(df.Preamble.Args) != 2 {
		t.Fatalf("expected 2 preamble args, got %d", len(df.Preamble.Args))
	}
	if df.Preamble.Args[0].Key != "BASE_IMAGE" {
		t.Errorf("preamble arg 0 Key = %q, want %q", df.Preamble.Args[0].Key, "BASE_IMAGE")
	}
}

func TestParse_EnvAndUser(t *testing.T) {
	content := `FROM ubuntu:22.04
ENV HOME=/home/dev
ENV EDITOR=vim
USER dev
RUN echo hello
USER root
`
	df, err := Parse(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stage := df.Stages[0]
	if len(stage.Envs) != 2 {
		t.Errorf("expected 2 ENVs, got %d", len(stage.Envs))
	}
	if len(stage.Users) != 2 {
		t.Errorf("expected 2 USERs, got %d", len(stage.Users))
	}
	if stage.Users[1] != "root" {
		t.Errorf("last USER = %q, want %q", stage.Users[1], "root")
	}
}

func TestFindBaseImage_NoArgs(t *testing.T) {
	df, err := Parse("FROM ubuntu:22.04\n")
	if err != nil {
		t.Fatal(err)
	}

	image := df.FindBaseImage(nil, "")
	if image != "ubuntu:22.04" {
		t.Errorf("got %q, want %q", image, "ubuntu:22.04")
	}
}

func TestFindBaseImage_MultistageThroughStageRef(t *testing.T) {
	content := `FROM ubuntu:22.04 AS base
RUN echo setup
FROM base AS builder
RUN echo build
`
	df, err := Parse(content)
	if err != nil {
		t.Fatal(err)
	}

	// FindBaseImage on "builder" should resolve through "base" to "ubuntu:22.04".
	image := df.FindBaseImage(nil, "builder")
	if image != "ubuntu:22.04" {
		t.Errorf("got %q, want %q", image, "ubuntu:22.04")
	}
}

func TestFindUserStatement_WithARGVariable(t *testing.T) {
	content := `ARG USERNAME=devuser
FROM ubuntu:22.04
USER ${USERNAME}
`
	df, err := Parse(content)
	if err != nil {
		t.Fatal(err)
	}

	user := df.FindUserStatement(nil, "")
	if user != "devuser" {
		t.Errorf("got %q, want %q", user, "devuser")
	}
}

func TestFindUserStatement_MultistageResolution(t *testing.T) {
	content := `FROM ubuntu:22.04 AS base
USER devuser
FROM base AS builder
RUN echo build
`
	df, err := Parse(content)
	if err != nil {
		t.Fatal(err)
	}

	// "builder" has no USER, should walk to "base" and find "devuser".
	user := df.FindUserStatement(nil, "builder")
	if user != "devuser" {
		t.Errorf("got %q, want %q", user, "devuser")
	}
}

func TestParse_EmptyContent(t *testing.T) {
	_, err := Parse("")
	if err == nil {
		t.Fatal("expected error for empty Dockerfile")
	}
}

func TestParse_InvalidContent(t *testing.T) {
	// "INVALID" is not a valid Dockerfile command, but the parser is lenient.
	// Only truly broken syntax causes errors.
	_, err := Parse("FROM\n")
	if err == nil {
		t.Fatal("expected error for invalid FROM")
	}
}

func TestFindBaseImage_NonexistentTarget(t *testing.T) {
	df, err := Parse("FROM ubuntu:22.04\n")
	if err != nil {
		t.Fatal(err)
	}

	image := df.FindBaseImage(nil, "nonexistent")
	if image != "" {
		t.Errorf("got %q, want empty", image)
	}
}

func TestFindUserStatement_CircularReference(t *testing.T) {
	// Manually construct a circular stage reference to verify no infinite loop.
	df := &Dockerfile{
		Stages: []*Stage{
			{Image: "stageB", Target: "stageA"},
			{Image: "stageA", Target: "stageB"},
		},
		StagesByTarget: map[string]*Stage{},
	}
	df.StagesByTarget["stageA"] = df.Stages[0]
	df.StagesByTarget["stageB"] = df.Stages[1]

	// Should return empty string without hanging.
	user := df.FindUserStatement(nil, "stageA")
	if user != "" {
		t.Errorf("got %q, want empty for circular reference", user)
	}
}

const layeredDockerfile = `ARG SUBREPO_TAG=subrepo_image_dev
FROM $SUBREPO_TAG AS base

ARG USERNAME=alice
ARG USER_UID=1000
RUN useradd -m -u "$USER_UID" "$USERNAME"
USER $USERNAME

FROM base AS devcontainer
USER root
RUN apt-get update
ARG USERNAME=alice
USER $USERNAME

FROM base AS buildcontainer
`

func TestTargets(t *testing.T) {
	df, err := Parse(layeredDockerfile)
	if err != nil {
		t.Fatal(err)
	}

	got := df.Targets()
	want := []string{"base", "devcontainer", "buildcontainer"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Targets() = %v, want %v", got, want)
	}
	if df.DefaultTarget() != "buildcontainer" {
		t.Errorf("DefaultTarget() = %q, want %q", df.DefaultTarget(), "buildcontainer")
	}
}

func TestPreambleArg(t *testing.T) {
	df, err := Parse(layeredDockerfile)
	if err != nil {
		t.Fatal(err)
	}

	got, ok := df.PreambleArg("SUBREPO_TAG")
	if !ok || got != "subrepo_image_dev" {
		t.Errorf("PreambleArg(SUBREPO_TAG) = %q, %v; want %q, true", got, ok, "subrepo_image_dev")
	}
	if _, ok := df.PreambleArg("USERNAME"); ok {
		t.Error("USERNAME is a stage ARG, not a preamble ARG")
	}
}

func TestFindBaseImage_PreambleTag(t *testing.T) {
	df, err := Parse(layeredDockerfile)
	if err != nil {
		t.Fatal(err)
	}

	for _, target := range []string{"", "base", "devcontainer"} {
		if got := df.FindBaseImage(nil, target); got != "subrepo_image_dev" {
			t.Errorf("FindBaseImage(%q) = %q, want %q", target, got, "subrepo_image_dev")
		}
	}

	if got := df.FindBaseImage(map[string]string{"SUBREPO_TAG": "other"}, "devcontainer"); got != "other" {
		t.Errorf("FindBaseImage with override = %q, want %q", got, "other")
	}
}

func TestFindUserStatement_StageArgDefault(t *testing.T) {
	df, err := Parse(layeredDockerfile)
	if err != nil {
		t.Fatal(err)
	}

	if got := df.FindUserStatement(nil, "devcontainer"); got != "alice" {
		t.Errorf("devcontainer user = %q, want %q", got, "alice")
	}
	// buildcontainer has no USER of its own and inherits from base.
	if got := df.FindUserStatement(nil, "buildcontainer"); got != "alice" {
		t.Errorf("buildcontainer user = %q, want %q", got, "alice")
	}
	if got := df.FindUserStatement(map[string]string{"USERNAME": "bob"}, "devcontainer"); got != "bob" {
		t.Errorf("devcontainer user with build arg = %q, want %q", got, "bob")
	}
}
