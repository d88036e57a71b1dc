// Package hcl_adapter implements config.Loader for HCL settings files.
//
// A settings file looks like:
//
//	schema            = "INICodingCheck.ini"
//	scripts_dir       = "${env.MOD_ROOT}/Scripts"
//	file_type         = "rules"
//	max_string_length = 512
//	optional_reference_types = ["AnimList"]
//
//	severity "KeyNotExist" {
//	  level = "off"
//	}
//
// Expressions are evaluated with a single variable, env, holding the process
// environment.
package hcl_adapter
