package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"candidate": {
		"job:view",
		"round:view",
		"application:create",
		"application:view-own",
		"session:run",
		"report:view-own",
		"user:change_password",
	},
	"recruiter": {
		"job:create",
		"job:view",
		"job:delete_own",
		"round:create",
		"round:view",
		"question:create",
		"question:generate",
		"question:view-full",
		"application:view-all",
		"report:view-all",
		"audit:view",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
