package dsl

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/aretw0/capstan/internal/runtime"
	"github.com/aretw0/capstan/pkg/domain"
	"github.com/aretw0/capstan/pkg/recipe"
)

type recordingRunner struct {
	commands []string
	fail     string
}

func (r *recordingRunner) Run(ctx context.Context, command string, env map[string]string) (string, error) {
	r.commands = append(r.commands, command)
	if command == r.fail {
		return "", errors.New("failed: " + command)
	}
	return "", nil
}

func TestBuilder_NestedTasks(t *testing.T) {
	b := New()
	b.Env("APP", "shop")
	b.Namespace("deploy", "Deployment steps")

	b.Task("deploy").
		Desc("Deploy the app").
		Transaction().
		Invoke("deploy:web:update")

	b.Task("deploy:web:update").
		Run("git fetch").
		Rollback("git reset").
		Env("BRANCH", "main")

	r, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if r.Env["APP"] != "shop" {
		t.Errorf("Expected recipe env APP=shop, got %v", r.Env)
	}
	if !r.Tasks["deploy"].Transaction {
		t.Error("Expected deploy to be transactional")
	}

	deployNS := r.Namespaces["deploy"]
	if deployNS.Desc != "Deployment steps" {
		t.Errorf("Expected namespace description, got %q", deployNS.Desc)
	}

	update := deployNS.Namespaces["web"].Tasks["update"]
	if !reflect.DeepEqual(update.Run, []string{"git fetch"}) {
		t.Errorf("Unexpected run commands: %v", update.Run)
	}
	if !reflect.DeepEqual(update.Rollback, []string{"git reset"}) {
		t.Errorf("Unexpected rollback commands: %v", update.Rollback)
	}
	if update.Env["BRANCH"] != "main" {
		t.Errorf("Expected task env BRANCH=main, got %v", update.Env)
	}
}

func TestBuilder_TaskIsReused(t *testing.T) {
	b := New()
	b.Task("deploy").Run("one")
	b.Task("deploy").Run("two")

	r, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if !reflect.DeepEqual(r.Tasks["deploy"].Run, []string{"one", "two"}) {
		t.Errorf("Expected commands to accumulate, got %v", r.Tasks["deploy"].Run)
	}
}

func TestBuilder_MalformedPath(t *testing.T) {
	b := New()
	b.Task("deploy::update")

	if _, err := b.Build(); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestBuilder_CompilesAndRollsBack(t *testing.T) {
	b := New()
	b.Task("deploy").Transaction().Invoke("deploy:update", "deploy:restart")
	b.Task("deploy:update").Run("update").Rollback("undo update")
	b.Task("deploy:restart").Run("restart").Rollback("undo restart")

	r, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	runner := &recordingRunner{fail: "restart"}
	root, err := r.Compile(recipe.WithRunner(runner))
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}

	if _, err := runtime.NewEngine().Execute(context.Background(), "deploy", root, false); err == nil {
		t.Fatal("Expected deploy to fail")
	}

	want := []string{"update", "restart", "undo restart", "undo update"}
	if !reflect.DeepEqual(runner.commands, want) {
		t.Errorf("Expected %v, got %v", want, runner.commands)
	}
}
