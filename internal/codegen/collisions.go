package codegen

import (
	"sort"
	"strings"

	"github.com/conduit-lang/cppbind/internal/errors"
	"github.com/conduit-lang/cppbind/internal/goinfo"
)

// CheckCollisions verifies that every rendered package-level identifier
// and every method name of a wrapper type is declared once
func CheckCollisions(db *goinfo.Database) error {
	scopes := make(map[string]map[string]int)
	declare := func(scope, ident string) {
		if scopes[scope] == nil {
			scopes[scope] = make(map[string]int)
		}
		scopes[scope][ident]++
	}

	for _, t := range db.Types {
		pkg := packageScope(t.Path.Package)
		declare(pkg, t.Path.Name)
		for _, v := range t.EnumValues {
			declare(pkg, v.Name)
		}
	}
	for _, f := range db.Functions {
		if f.IsMethod() {
			declare(typeScope(f.Scope.Target), f.Name)
		} else {
			declare(packageScope(f.Module), f.Name)
		}
	}
	for _, impl := range db.TraitImpls {
		for _, f := range impl.Functions {
			declare(typeScope(impl.Target), f.Name)
		}
	}

	var names []string
	for scope := range scopes {
		names = append(names, scope)
	}
	sort.Strings(names)

	var errs errors.ErrorList
	for _, scope := range names {
		var dups []string
		for ident, n := range scopes[scope] {
			if n > 1 {
				dups = append(dups, ident)
			}
		}
		sort.Strings(dups)
		for _, ident := range dups {
			errs = append(errs, errors.NewIdentifierCollision(scope, ident))
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func packageScope(pkg []string) string {
	if len(pkg) == 0 {
		return "."
	}
	return strings.Join(pkg, "/")
}

func typeScope(p goinfo.Path) string {
	return packageScope(p.Package) + "." + p.Name
}
