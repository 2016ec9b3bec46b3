package fixture

import (
	"fmt"

	"golang.org/x/tools/txtar"
	"gopkg.in/yaml.v3"

	"github.com/latticelang/traitcore/internal/ir"
	"github.com/latticelang/traitcore/internal/program"
)

// LoadArchive decodes a txtar archive of named YAML fixture documents: each
// file in the archive is one Doc, and its result is keyed by the file name
// (minus any ".yaml"/".yml" suffix), letting one on-disk file bundle every
// scenario a test suite exercises rather than scattering them one-per-file.
func LoadArchive(data []byte) (map[string]*program.Program, map[string]map[string]ir.InEnvironment[*ir.Goal], error) {
	ar := txtar.Parse(data)
	programs := make(map[string]*program.Program, len(ar.Files))
	goalsByDoc := make(map[string]map[string]ir.InEnvironment[*ir.Goal], len(ar.Files))

	for _, f := range ar.Files {
		name := trimYAMLSuffix(f.Name)
		var doc Doc
		if err := yaml.Unmarshal(f.Data, &doc); err != nil {
			return nil, nil, fmt.Errorf("fixture: archive file %s: %w", f.Name, err)
		}
		prog, goals, err := Build(doc)
		if err != nil {
			return nil, nil, fmt.Errorf("fixture: archive file %s: %w", f.Name, err)
		}
		programs[name] = prog
		goalsByDoc[name] = goals
	}
	return programs, goalsByDoc, nil
}

func trimYAMLSuffix(name string) string {
	for _, suffix := range []string{".yaml", ".yml"} {
		if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
			return name[:len(name)-len(suffix)]
		}
	}
	return name
}
