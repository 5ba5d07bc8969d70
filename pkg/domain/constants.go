package domain

const (
	// Separator joins namespace and task names in qualified names ("deploy:migrate").
	Separator = ":"

	// BeforeHookPrefix and AfterHookPrefix name the optional hook tasks that wrap a task
	// of the same namespace ("before_deploy", "after_deploy").
	BeforeHookPrefix = "before_"
	AfterHookPrefix  = "after_"
)

// EnvTaskName is the environment variable exposed to commands run on behalf of a task.
const EnvTaskName = "CAPSTAN_TASK"
