package ros

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

const (
	Sep       = "/"
	GlobalNS  = "/"
	PrivateNS = "~"
	Remap     = ":="
)

//NameMap maps graph names to graph names.
type NameMap map[string]string

//getNamespace returns the namespace containing the given graph name,
//always with a trailing separator.
func getNamespace(name string) string {
	if len(name) == 0 {
		return GlobalNS
	} else if name[len(name)-1] == '/' {
		name = name[:len(name)-1]
	}
	result := name[:strings.LastIndex(name, Sep)+1]
	if len(result) == 0 {
		return Sep
	}
	return result
}

//qualifyNodeName splits a node name into its namespace and base name.
//A bare name lives in the global namespace.
func qualifyNodeName(nodeName string) (string, string, error) {
	if nodeName == "" {
		return "", "", errors.New("empty node name")
	}
	if nodeName[0] == '~' {
		return "", "", errors.New("node name may not be private")
	}
	canonName := canonicalizeName(nodeName)

	var components []string
	for _, c := range strings.Split(canonName, Sep) {
		if len(c) > 0 {
			components = append(components, c)
		}
	}
	if len(components) == 0 {
		return "", "", errors.Errorf("invalid node name '%s'", nodeName)
	}
	if len(components) == 1 {
		return GlobalNS, components[0], nil
	}
	namespace := GlobalNS + strings.Join(components[:len(components)-1], Sep)
	return namespace, components[len(components)-1], nil
}

//resolveName resolves name against the caller's qualified node name.
//Global names pass through, private names attach to the node itself and
//relative names attach to the node's namespace. The result is remapped
//through mappings when a mapping for it exists.
func resolveName(name string, nodeQualifiedName string, mappings NameMap) string {
	var resolvedName string

	if len(name) == 0 {
		return getNamespace(nodeQualifiedName)
	}

	canonName := canonicalizeName(name)
	if isGlobalName(canonName) {
		resolvedName = canonName
	} else if isPrivateName(canonName) {
		resolvedName = canonicalizeName(nodeQualifiedName + Sep + canonName[1:])
	} else {
		resolvedName = getNamespace(nodeQualifiedName) + canonName
	}

	if mappings != nil {
		if remappedName, ok := mappings[resolvedName]; ok {
			return remappedName
		}
	}
	return resolvedName
}

func isValidName(name string) bool {
	if len(name) == 0 {
		return true
	}
	if name == "/" || name == "~" {
		return true
	}
	matched, _ := regexp.MatchString(`^[~/]?([a-zA-Z]\w*/)*([a-zA-Z]\w*)?/?$`, name)
	return matched
}

func isValidNamespace(name string) bool {
	if len(name) == 0 {
		return false
	}
	matched, _ := regexp.MatchString(`^/([a-zA-Z]\w*/)*([a-zA-Z]\w*)?$`, name)
	return matched
}

func isGlobalName(name string) bool {
	return len(name) > 0 && name[0:1] == GlobalNS
}

func isPrivateName(name string) bool {
	return len(name) > 0 && name[0:1] == PrivateNS
}

//canonicalizeName removes sequential and trailing separators.
func canonicalizeName(name string) string {
	if name == GlobalNS {
		return name
	}
	components := []string{}
	for _, word := range strings.Split(name, Sep) {
		if len(word) > 0 {
			components = append(components, word)
		}
	}
	if name[0:1] == GlobalNS {
		return GlobalNS + strings.Join(components, Sep)
	}
	return strings.Join(components, Sep)
}

//processArguments separates command line arguments into remappings,
//parameter assignments (leading underscore stripped), special keys
//(double underscore kept) and everything else.
func processArguments(args []string) (NameMap, NameMap, NameMap, []string) {
	mapping := make(NameMap)
	params := make(NameMap)
	specials := make(NameMap)
	rest := make([]string, 0)
	for _, arg := range args {
		components := strings.SplitN(arg, Remap, 2)
		if len(components) == 2 {
			key := components[0]
			value := components[1]
			if strings.HasPrefix(key, "__") {
				specials[key] = value
			} else if strings.HasPrefix(key, "_") {
				params[key[1:]] = value
			} else {
				mapping[key] = value
			}
		} else {
			rest = append(rest, arg)
		}
	}
	return mapping, params, specials, rest
}

//NameResolver resolves and remaps graph names from the point of view of
//one node.
type NameResolver struct {
	namespace       string
	nodeName        string
	qualifiedName   string
	mapping         NameMap
	resolvedMapping NameMap
}

func newNameResolver(namespace string, nodeName string, remapping NameMap) *NameResolver {
	n := new(NameResolver)

	n.namespace = canonicalizeName(namespace)
	n.nodeName = nodeName
	n.qualifiedName = canonicalizeName(namespace + Sep + nodeName)
	n.mapping = remapping
	n.resolvedMapping = make(NameMap)

	for k, v := range n.mapping {
		newKey := resolveName(k, n.qualifiedName, nil)
		newValue := resolveName(v, n.qualifiedName, nil)
		n.resolvedMapping[newKey] = newValue
	}

	return n
}

//resolve returns the fully qualified form of name with remappings applied.
func (n *NameResolver) resolve(name string) string {
	return resolveName(name, n.qualifiedName, n.resolvedMapping)
}

//remap is resolve for names that originate outside the node, such as
//topic names handed to publishers and subscribers.
func (n *NameResolver) remap(name string) string {
	return resolveName(name, n.qualifiedName, n.resolvedMapping)
}
