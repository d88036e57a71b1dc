// Package script runs user-supplied Lua validators for type names the schema
// does not define itself.
//
// Every file NAME.lua in the scripts directory handles the type NAME and
// must define a global function:
//
//	function validate(section, key, value, type)
//	  if value == "0,0,0" then
//	    return 2, "pure black is invisible in game"
//	  end
//	end
//
// section is a table of the section's keys. The function returns a result
// code and a message, in either order: 0 or nothing means the value is
// fine, 1 is info, 2 is warning, 3 is error. A lone message is an error.
// Scripts may call get_section(name) to read any section of the document
// being validated; it returns nil for missing sections.
//
// Each script runs in its own global environment inside one shared,
// sandboxed Lua state: io, os, debug and package are not available, and
// dofile, loadfile, load and loadstring are removed.
package script
