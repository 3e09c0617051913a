package data

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// A data file may declare "constants" (one set of name/value pairs) and "parameters" (a list of
// sets, or a list of lists of sets whose cross product is taken). Every "<NAME>" in the file is
// replaced by the value; a quoted "\"<NAME>\"" is replaced by the value's JSON form so it keeps
// its type.
type substitutionSet map[string]ldvalue.Value

func expandSubstitutions(original []byte) ([]SourceInfo, error) {
	var substs struct {
		Constants  substitutionSet   `json:"constants"`
		Parameters []json.RawMessage `json:"parameters"`
	}
	if err := ParseJSONOrYAML(original, &substs); err != nil {
		return nil, err
	}
	if len(substs.Constants) == 0 && len(substs.Parameters) == 0 {
		return []SourceInfo{{Data: original}}, nil
	}
	paramSets, err := parameterPermutations(substs.Parameters)
	if err != nil {
		return nil, err
	}
	withConstants := replaceVariables(original, substs.Constants)
	if len(paramSets) == 0 {
		return []SourceInfo{{Data: withConstants}}, nil
	}
	ret := make([]SourceInfo, 0, len(paramSets))
	for _, params := range paramSets {
		// constants are applied again so that parameter values may refer to them
		expanded := replaceVariables(replaceVariables(withConstants, params), substs.Constants)
		ret = append(ret, SourceInfo{Data: expanded, Params: params})
	}
	return ret, nil
}

func parameterPermutations(raw []json.RawMessage) ([]substitutionSet, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	all, _ := json.Marshal(raw)
	switch ldvalue.Parse(raw[0]).Type() {
	case ldvalue.ObjectType:
		var list []substitutionSet
		if err := json.Unmarshal(all, &list); err != nil {
			return nil, err
		}
		return list, nil
	case ldvalue.ArrayType:
		var lists [][]substitutionSet
		if err := json.Unmarshal(all, &lists); err != nil {
			return nil, err
		}
		return crossProduct(lists), nil
	}
	return nil, errors.New("parameters must be an array of objects or an array of arrays")
}

func crossProduct(lists [][]substitutionSet) []substitutionSet {
	result := []substitutionSet{{}}
	for _, list := range lists {
		if len(list) == 0 {
			continue
		}
		next := make([]substitutionSet, 0, len(result)*len(list))
		for _, partial := range result {
			for _, set := range list {
				merged := make(substitutionSet, len(partial)+len(set))
				for k, v := range partial {
					merged[k] = v
				}
				for k, v := range set {
					merged[k] = v
				}
				next = append(next, merged)
			}
		}
		result = next
	}
	return result
}

func replaceVariables(original []byte, substs substitutionSet) []byte {
	s := string(original)
	s = strings.ReplaceAll(s, `\u003c`, "<")
	s = strings.ReplaceAll(s, `\u003e`, ">")
	names := make([]string, 0, len(substs))
	for name := range substs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		value := substs[name]
		typed := value.JSONString()
		s = strings.ReplaceAll(s, `"<`+name+`>"`, typed)
		interpolated := typed
		if value.IsString() {
			interpolated = value.StringValue()
		}
		s = strings.ReplaceAll(s, "<"+name+">", interpolated)
	}
	return []byte(s)
}
