package recipe_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/capstan/internal/runtime"
	"github.com/aretw0/capstan/pkg/domain"
	"github.com/aretw0/capstan/pkg/recipe"
	"github.com/aretw0/capstan/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

type call struct {
	command string
	env     map[string]string
}

type fakeRunner struct {
	calls []call
	fail  map[string]error
}

func (f *fakeRunner) Run(ctx context.Context, command string, env map[string]string) (string, error) {
	f.calls = append(f.calls, call{command: command, env: env})
	if err := f.fail[command]; err != nil {
		return "", err
	}
	return "ran " + command, nil
}

func (f *fakeRunner) commands() []string {
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.command
	}
	return out
}

func compile(t *testing.T, doc string, opts ...recipe.CompileOption) *domain.Namespace {
	t.Helper()
	r, err := recipe.Parse([]byte(doc))
	require.NoError(t, err)
	root, err := r.Compile(opts...)
	require.NoError(t, err)
	return root
}

func TestCompile_DefinesTasks(t *testing.T) {
	root := compile(t, deployRecipe, recipe.WithRunner(&fakeRunner{}))

	var names []string
	root.Walk(func(task *domain.Task) bool {
		names = append(names, task.FullyQualifiedName())
		return true
	})
	assert.Equal(t, []string{"deploy", "deploy:migrate", "deploy:update_code"}, names)

	deploy, ok := root.Lookup("deploy")
	require.True(t, ok)
	assert.Equal(t, "Deploy the app", deploy.Description)

	ns, ok := root.Child("deploy")
	require.True(t, ok)
	assert.Equal(t, "Deployment steps", ns.Description)
}

func TestCompile_RunsCommandsWithEnv(t *testing.T) {
	runner := &fakeRunner{}
	root := compile(t, deployRecipe, recipe.WithRunner(runner))

	result, err := runtime.NewEngine().Execute(context.Background(), "deploy", root, false)
	require.NoError(t, err)
	assert.Equal(t, "ran ./bin/migrate up", result, "the last step's output is the result")

	assert.Equal(t, []string{"git fetch", "./bin/migrate up"}, runner.commands())
	assert.Equal(t, map[string]string{
		"APP":          "shop",
		"CAPSTAN_TASK": "deploy:update_code",
	}, runner.calls[0].env)
	assert.Equal(t, map[string]string{
		"APP":          "shop",
		"STEPS":        "1",
		"CAPSTAN_TASK": "deploy:migrate",
	}, runner.calls[1].env)
}

func TestCompile_TransactionRollsBackInReverse(t *testing.T) {
	runner := &fakeRunner{fail: map[string]error{"./bin/migrate up": errBoom}}
	root := compile(t, deployRecipe, recipe.WithRunner(runner))

	_, err := runtime.NewEngine().Execute(context.Background(), "deploy", root, false)
	assert.Same(t, errBoom, err)

	assert.Equal(t, []string{
		"git fetch",
		"./bin/migrate up",
		"./bin/migrate down",
		"git reset --hard ORIG_HEAD",
	}, runner.commands())
	assert.Equal(t, "deploy:migrate", runner.calls[2].env["CAPSTAN_TASK"])
	assert.Equal(t, "deploy:update_code", runner.calls[3].env["CAPSTAN_TASK"])
}

func TestCompile_NoTransactionNoRollback(t *testing.T) {
	doc := `
tasks:
  update:
    run: [fetch, checkout]
    rollback: reset
`
	runner := &fakeRunner{fail: map[string]error{"checkout": errBoom}}
	root := compile(t, doc, recipe.WithRunner(runner))

	_, err := runtime.NewEngine().Execute(context.Background(), "update", root, false)
	assert.Same(t, errBoom, err)
	assert.Equal(t, []string{"fetch", "checkout"}, runner.commands(), "rollbacks outside a transaction never run")
}

func TestCompile_BareInvokeStaysInNamespace(t *testing.T) {
	doc := `
tasks:
  restart:
    run: root-restart
namespaces:
  web:
    tasks:
      restart:
        run: web-restart
      deploy:
        invoke: restart
`
	runner := &fakeRunner{}
	root := compile(t, doc, recipe.WithRunner(runner))
	web, _ := root.Child("web")

	_, err := runtime.NewEngine().Execute(context.Background(), "deploy", web, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"web-restart"}, runner.commands())
}

func TestCompile_HooksFromRecipe(t *testing.T) {
	doc := `
tasks:
  before_deploy:
    run: notify start
  deploy:
    run: ship
  after_deploy:
    run: notify done
`
	runner := &fakeRunner{}
	root := compile(t, doc, recipe.WithRunner(runner))

	_, err := runtime.NewEngine().Execute(context.Background(), "deploy", root, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"notify start", "ship", "notify done"}, runner.commands())
}

func TestCompile_CallsRegisteredAction(t *testing.T) {
	reg := registry.NewRegistry()
	var got map[string]any
	reg.Register("db.migrate", func(ctx context.Context, args map[string]any) (any, error) {
		got = args
		return "migrated", nil
	})

	doc := `
tasks:
  migrate:
    call: db.migrate
    with:
      steps: 2
`
	root := compile(t, doc, recipe.WithRegistry(reg))

	result, err := runtime.NewEngine().Execute(context.Background(), "migrate", root, false)
	require.NoError(t, err)
	assert.Equal(t, "migrated", result)
	assert.Equal(t, map[string]any{"steps": 2}, got)
}

func TestCompile_WithRootSharesNamespace(t *testing.T) {
	root := domain.NewNamespace("")
	called := false
	_, err := root.Define("native", "", func(ctx context.Context, x domain.Executor) (any, error) {
		called = true
		return nil, nil
	})
	require.NoError(t, err)

	compiled := compile(t, "tasks:\n  wrapper:\n    invoke: native\n", recipe.WithRoot(root))
	assert.Same(t, root, compiled)

	_, err = runtime.NewEngine().Execute(context.Background(), "wrapper", root, false)
	require.NoError(t, err)
	assert.True(t, called)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		opts []recipe.CompileOption
		want error
	}{
		{
			name: "unknown invoke target",
			doc:  "tasks:\n  deploy:\n    invoke: deploy:nothing\n",
			want: domain.ErrTaskNotFound,
		},
		{
			name: "unknown bare invoke",
			doc:  "tasks:\n  deploy:\n    invoke: nothing\n",
			want: domain.ErrTaskNotFound,
		},
		{
			name: "unregistered action",
			doc:  "tasks:\n  deploy:\n    call: db.migrate\n",
			opts: []recipe.CompileOption{recipe.WithRegistry(registry.NewRegistry())},
			want: registry.ErrActionNotFound,
		},
		{
			name: "commands without runner",
			doc:  "tasks:\n  deploy:\n    run: ls\n",
			want: recipe.ErrNoRunner,
		},
		{
			name: "invalid task name",
			doc:  "tasks:\n  \"a:b\":\n    desc: nope\n",
			want: domain.ErrInvalidArgument,
		},
		{
			name: "invalid namespace name",
			doc:  "namespaces:\n  \"a:b\":\n    desc: nope\n",
			want: domain.ErrInvalidArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := recipe.Parse([]byte(tt.doc))
			require.NoError(t, err)
			_, err = r.Compile(tt.opts...)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
