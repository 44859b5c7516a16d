// Package recipe defines what a recipe file contains and decodes recipes
// from TOML, YAML and HCL sources.
//
// A recipe contributes three things to a run:
//
//	variables  settings that commands can reference as {{ .name }}
//	roles      named groups of hosts
//	tasks      named actions: shell commands run on the hosts of some
//	           roles, optionally preceded by other tasks
//
// The same recipe in TOML:
//
//	[variables]
//	application = "shop"
//
//	[roles]
//	app = ["deploy@app1.example.com", "app2.example.com:2222"]
//
//	[tasks.restart]
//	description = "Restart the application servers"
//	roles = ["app"]
//	commands = ["systemctl restart {{ .application }}"]
//	sudo = true
//
// and in HCL:
//
//	variables = {
//	  application = "shop"
//	}
//
//	role "app" {
//	  hosts = ["deploy@app1.example.com", "app2.example.com:2222"]
//	}
//
//	task "restart" {
//	  description = "Restart the application servers"
//	  roles       = ["app"]
//	  commands    = ["systemctl restart {{ .application }}"]
//	  sudo        = true
//	}
package recipe
