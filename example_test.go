package capstan_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aretw0/capstan"
	"github.com/aretw0/capstan/pkg/domain"
)

// ExampleNew_namespace defines tasks in Go and shows a failed transaction
// unwinding the compensations in reverse order.
func ExampleNew_namespace() {
	root := domain.NewNamespace("")
	deploy := root.Namespace("deploy")

	step := func(name string, fail bool) domain.Body {
		return func(ctx context.Context, x domain.Executor) (any, error) {
			if err := x.OnRollback(func(ctx context.Context) error {
				fmt.Println("undo", name)
				return nil
			}); err != nil {
				return nil, err
			}
			fmt.Println("do", name)
			if fail {
				return nil, errors.New(name + " failed")
			}
			return nil, nil
		}
	}

	mustDefine := func(ns *domain.Namespace, name string, body domain.Body) {
		if _, err := ns.Define(name, "", body); err != nil {
			log.Fatal(err)
		}
	}
	mustDefine(deploy, "update_code", step("update_code", false))
	mustDefine(deploy, "symlink", step("symlink", false))
	mustDefine(deploy, "restart", step("restart", true))
	mustDefine(root, "deploy", func(ctx context.Context, x domain.Executor) (any, error) {
		return x.Transaction(ctx, func(ctx context.Context) (any, error) {
			for _, name := range []string{"update_code", "symlink", "restart"} {
				if _, err := x.Execute(ctx, name, deploy, false); err != nil {
					return nil, err
				}
			}
			return nil, nil
		})
	})

	engine, err := capstan.New("", capstan.WithNamespace(root))
	if err != nil {
		log.Fatal(err)
	}

	err = engine.Run(context.Background(), "deploy")
	fmt.Println("error:", err)

	// Output:
	// do update_code
	// do symlink
	// do restart
	// undo restart
	// undo symlink
	// undo update_code
	// error: restart failed
}
