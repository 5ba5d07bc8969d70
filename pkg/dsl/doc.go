/*
Package dsl provides a fluent Go builder for capstan recipes.

It produces the same *recipe.Recipe a YAML document decodes into, so tasks can be
declared in code for tests, generated recipes or embedding, and then compiled with
the usual options.

Example usage:

	b := dsl.New()
	b.Env("APP", "shop")

	b.Task("deploy").
		Desc("Deploy the app").
		Transaction().
		Invoke("deploy:update_code", "deploy:migrate")

	b.Task("deploy:update_code").
		Run("git fetch").
		Rollback("git reset --hard ORIG_HEAD")

	b.Task("deploy:migrate").
		Run("./bin/migrate up").
		Rollback("./bin/migrate down")

	r, err := b.Build()
	// ... r.Compile(recipe.WithRunner(process.NewRunner()))
*/
package dsl
