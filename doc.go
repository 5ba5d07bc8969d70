/*
Package capstan runs deployment-style tasks with transactional rollback.

Tasks live in namespaces and are addressed by qualified names such as
"deploy:migrate". Running a task also runs its "before_" and "after_" hook tasks.
A task can open a transaction and register compensations; when the transaction
fails, every compensation registered inside it runs in reverse order before the
error is returned.

# Usage

Tasks are usually declared in a YAML recipe:

	tasks:
	  deploy:
	    desc: Deploy the app
	    transaction: true
	    invoke: [deploy:update_code, deploy:migrate]
	namespaces:
	  deploy:
	    tasks:
	      update_code:
	        run: git fetch
	        rollback: git reset --hard ORIG_HEAD
	      migrate:
	        run: ./bin/migrate up
	        rollback: ./bin/migrate down

and run through the Engine:

	engine, err := capstan.New("Capfile.yaml")
	if err != nil {
		log.Fatal(err)
	}
	if err := engine.Run(ctx, "deploy"); err != nil {
		log.Fatal(err)
	}

Tasks can also be defined in Go on a domain.Namespace and passed with WithNamespace.
*/
package capstan
