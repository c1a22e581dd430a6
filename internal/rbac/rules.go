package rbac

// Default policy for the two roles the app knows about.
var RolePermissions = map[string][]string{
	"student": {
		"question:view",
		"attempt:start",
		"answer:submit",
		"answer:view-own",
		"classroom:view",
	},
	"admin": {
		"*", // everything
	},
}
