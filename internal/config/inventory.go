package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Device is one inventory entry.
type Device struct {
	Name string `yaml:"name"`
	IP   string `yaml:"ip"`
}

// DeviceGroup is an inventory device type with its devices, in file order.
type DeviceGroup struct {
	Type    string
	Devices []Device
}

// LoadInventory reads the operator inventory: a YAML mapping of device type
// to a list of {name, ip} entries. Group order follows the file so reports
// keep the operator's ordering. Malformed groups and entries without an ip
// are dropped and returned in skipped; they never abort the run. A missing
// or unparsable inventory is fatal: there is nothing to report on.
func LoadInventory(path string) (groups []DeviceGroup, skipped []string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read inventory %s: %w", path, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, fmt.Errorf("failed to parse inventory %s: %w", path, err)
	}
	if len(root.Content) == 0 {
		return nil, nil, nil
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("inventory %s: top level must be a mapping of device types", path)
	}

	// Mapping nodes hold key/value pairs back to back; walking them keeps
	// the document order that plain map decoding would lose.
	for i := 0; i+1 < len(doc.Content); i += 2 {
		keyNode, valNode := doc.Content[i], doc.Content[i+1]

		var devices []Device
		if err := valNode.Decode(&devices); err != nil {
			skipped = append(skipped, keyNode.Value)
			continue
		}

		group := DeviceGroup{Type: keyNode.Value}
		for _, d := range devices {
			if d.IP == "" {
				skipped = append(skipped, fmt.Sprintf("%s/%s", keyNode.Value, d.Name))
				continue
			}
			group.Devices = append(group.Devices, d)
		}
		groups = append(groups, group)
	}

	return groups, skipped, nil
}
