package errors

import "strings"

// Model inconsistency error codes (MOD100-199)
const (
	// ErrInheritanceCycle indicates a cycle among class base lists
	ErrInheritanceCycle ErrorCode = "MOD101"
	// ErrUnknownBase indicates a base class that is not a known class entity
	ErrUnknownBase ErrorCode = "MOD102"
	// ErrUnknownInstantiation indicates a registry key without a type entity
	ErrUnknownInstantiation ErrorCode = "MOD103"
	// ErrInstantiationNotTemplate indicates a registry key that is not a template class
	ErrInstantiationNotTemplate ErrorCode = "MOD104"
	// ErrDuplicateType indicates two type entities with the same name
	ErrDuplicateType ErrorCode = "MOD105"
)

// ABI synthesis error codes (ABI200-299)
const (
	// ErrVariadicMethod indicates a method with variable arguments
	ErrVariadicMethod ErrorCode = "ABI201"
	// ErrUnsupportedType indicates a type that cannot cross the FFI boundary
	ErrUnsupportedType ErrorCode = "ABI202"
	// ErrUnknownScope indicates a method scoped to an unknown class
	ErrUnknownScope ErrorCode = "ABI203"
	// ErrAbstractConstructor indicates a constructor of an abstract class
	ErrAbstractConstructor ErrorCode = "ABI204"
	// ErrUninstantiatedTemplate indicates a method that still uses template parameters
	ErrUninstantiatedTemplate ErrorCode = "ABI205"
)

// Emission error codes (EMI300-399)
const (
	// ErrCaptionsExhausted indicates no caption strategy produced unique names
	ErrCaptionsExhausted ErrorCode = "EMI301"
	// ErrIdentifierCollision indicates two rendered package-level identifiers collide
	ErrIdentifierCollision ErrorCode = "EMI302"
	// ErrRenderFailed indicates the Go source could not be rendered
	ErrRenderFailed ErrorCode = "EMI303"
)

// Process error codes (PRC400-499)
const (
	// ErrCommandFailed indicates an external command exited non-zero
	ErrCommandFailed ErrorCode = "PRC401"
)

// Cache error codes (CAC500-599)
const (
	// ErrStaleSnapshot indicates a snapshot that no longer decodes
	ErrStaleSnapshot ErrorCode = "CAC501"
)

// Config error codes (CFG600-699)
const (
	// ErrInvalidConfig indicates an invalid configuration value
	ErrInvalidConfig ErrorCode = "CFG601"
	// ErrUnresolvedIncludeDir indicates an include dir that could not be found
	ErrUnresolvedIncludeDir ErrorCode = "CFG602"
)

// NewInheritanceCycle creates a MOD101 error
func NewInheritanceCycle(classes []string) *BindError {
	return newError(
		ErrInheritanceCycle,
		"inheritance_cycle",
		CategoryModel,
		SeverityError,
		strings.Join(classes, ", "),
		"Inheritance cycle among classes: %s", strings.Join(classes, ", "),
	).WithSuggestion("Check the front-end output; a class cannot be its own base")
}

// NewUnknownBase creates a MOD102 error
func NewUnknownBase(class, base string) *BindError {
	return newError(
		ErrUnknownBase,
		"unknown_base",
		CategoryModel,
		SeverityError,
		class,
		"Class '%s' derives from unknown class '%s'", class, base,
	).WithSuggestion("Add the library declaring the base class as a dependency")
}

// NewUnknownInstantiation creates a MOD103 error
func NewUnknownInstantiation(name string) *BindError {
	return newError(
		ErrUnknownInstantiation,
		"unknown_instantiation",
		CategoryModel,
		SeverityError,
		name,
		"Template instantiation registered for unknown type '%s'", name,
	)
}

// NewInstantiationNotTemplate creates a MOD104 error
func NewInstantiationNotTemplate(name string) *BindError {
	return newError(
		ErrInstantiationNotTemplate,
		"instantiation_not_template",
		CategoryModel,
		SeverityError,
		name,
		"Template instantiation registered for '%s', which is not a template class", name,
	)
}

// NewDuplicateType creates a MOD105 error
func NewDuplicateType(name string) *BindError {
	return newError(
		ErrDuplicateType,
		"duplicate_type",
		CategoryModel,
		SeverityError,
		name,
		"Type '%s' is declared more than once", name,
	)
}

// NewVariadicMethod creates an ABI201 diagnostic
func NewVariadicMethod(method string) *BindError {
	return newError(
		ErrVariadicMethod,
		"variadic_method",
		CategoryABI,
		SeverityWarning,
		method,
		"Method '%s' takes variable arguments and has no stable ABI; it is not wrapped", method,
	)
}

// NewUnsupportedType creates an ABI202 diagnostic
func NewUnsupportedType(method, typ, reason string) *BindError {
	return newError(
		ErrUnsupportedType,
		"unsupported_type",
		CategoryABI,
		SeverityWarning,
		method,
		"Method '%s' uses type '%s' that cannot cross the FFI boundary: %s", method, typ, reason,
	)
}

// NewUnknownScope creates an ABI203 diagnostic
func NewUnknownScope(method, class string) *BindError {
	return newError(
		ErrUnknownScope,
		"unknown_scope",
		CategoryABI,
		SeverityWarning,
		method,
		"Method '%s' belongs to unknown class '%s'", method, class,
	)
}

// NewAbstractConstructor creates an ABI204 diagnostic
func NewAbstractConstructor(method, class string) *BindError {
	return newError(
		ErrAbstractConstructor,
		"abstract_constructor",
		CategoryABI,
		SeverityWarning,
		method,
		"Constructor '%s' of abstract class '%s' cannot be called", method, class,
	)
}

// NewUninstantiatedTemplate creates an ABI205 diagnostic
func NewUninstantiatedTemplate(method string) *BindError {
	return newError(
		ErrUninstantiatedTemplate,
		"uninstantiated_template",
		CategoryABI,
		SeverityWarning,
		method,
		"Method '%s' depends on template parameters without a registered instantiation", method,
	).WithSuggestion("Register the required instantiation in the library description")
}

// NewCaptionsExhausted creates an EMI301 error
func NewCaptionsExhausted(scope, name string, count int) *BindError {
	return newError(
		ErrCaptionsExhausted,
		"captions_exhausted",
		CategoryEmission,
		SeverityError,
		scope+"."+name,
		"Cannot find unique names for %d overloads of '%s' in %s", count, name, scope,
	).WithSuggestion("Blacklist one of the overloads in the configuration")
}

// NewIdentifierCollision creates an EMI302 error
func NewIdentifierCollision(pkg, ident string) *BindError {
	return newError(
		ErrIdentifierCollision,
		"identifier_collision",
		CategoryEmission,
		SeverityError,
		pkg+"."+ident,
		"Identifier '%s' is declared more than once in package '%s'", ident, pkg,
	)
}

// NewRenderFailed creates an EMI303 error
func NewRenderFailed(file string, reason string) *BindError {
	return newError(
		ErrRenderFailed,
		"render_failed",
		CategoryEmission,
		SeverityError,
		file,
		"Failed to render %s: %s", file, reason,
	)
}

// NewCommandFailed creates a PRC401 error
func NewCommandFailed(command string, reason string, output string) *BindError {
	return newError(
		ErrCommandFailed,
		"command_failed",
		CategoryProcess,
		SeverityError,
		command,
		"Command failed: %s (%s)", command, reason,
	).WithOutput(output)
}

// NewStaleSnapshot creates a CAC501 warning
func NewStaleSnapshot(path, reason string) *BindError {
	return newError(
		ErrStaleSnapshot,
		"stale_snapshot",
		CategoryCache,
		SeverityWarning,
		path,
		"Discarding cached model snapshot %s: %s", path, reason,
	)
}

// NewInvalidConfig creates a CFG601 error
func NewInvalidConfig(key, reason string) *BindError {
	return newError(
		ErrInvalidConfig,
		"invalid_config",
		CategoryConfig,
		SeverityError,
		key,
		"Invalid configuration value for '%s': %s", key, reason,
	)
}

// NewUnresolvedIncludeDir creates a CFG602 warning
func NewUnresolvedIncludeDir(tried []string) *BindError {
	return newError(
		ErrUnresolvedIncludeDir,
		"unresolved_include_dir",
		CategoryConfig,
		SeverityWarning,
		strings.Join(tried, ", "),
		"Extra header dir not found (tried: %s)", strings.Join(tried, ", "),
	)
}
