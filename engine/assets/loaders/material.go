package loaders

import (
	"fmt"
	"strings"

	"github.com/mmalewski/Mech-Importer/engine/core"
)

// SlotKind names the texture inputs a material record can reference.
type SlotKind string

const (
	SlotDiffuse  SlotKind = "Diffuse"
	SlotSpecular SlotKind = "Specular"
	SlotBumpmap  SlotKind = "Bumpmap"
)

// SlotKinds lists the kinds in wiring order.
var SlotKinds = []SlotKind{SlotDiffuse, SlotSpecular, SlotBumpmap}

func parseSlotKind(s string) (SlotKind, bool) {
	for _, k := range SlotKinds {
		if strings.EqualFold(s, string(k)) {
			return k, true
		}
	}
	return "", false
}

// MaterialRecord is a named material and the resolved texture file per slot.
type MaterialRecord struct {
	Name         string
	TextureSlots map[SlotKind]string
}

// ParseMaterials reads every named Material element of a material descriptor.
// Unnamed materials (usually the container of the sub materials) are skipped,
// as are texture maps of kinds other than SlotKinds. When a name repeats, the
// first definition wins.
func ParseMaterials(path string, paths Paths) (map[string]MaterialRecord, error) {
	root, err := readDescriptor(path)
	if err != nil {
		return nil, err
	}

	records := make(map[string]MaterialRecord)
	for _, el := range root.findAll("Material") {
		name, ok := el.attr("Name")
		if !ok || name == "" {
			continue
		}
		if _, dup := records[name]; dup {
			core.LogDebug("material '%s' defined twice in %s, keeping the first", name, path)
			continue
		}
		records[name] = MaterialRecord{
			Name:         name,
			TextureSlots: textureSlots(el, paths),
		}
	}
	if len(records) == 0 {
		core.LogWarn("no named materials in %s", path)
	}
	return records, nil
}

// textureSlots collects the Texture elements that belong to mat itself, not to
// nested sub materials.
func textureSlots(mat *element, paths Paths) map[SlotKind]string {
	slots := make(map[SlotKind]string)
	mat.walk(func(el *element) bool {
		if el != mat && el.XMLName.Local == "Material" {
			return false
		}
		if el.XMLName.Local != "Texture" {
			return true
		}
		kind, ok := parseSlotKind(attrOr(el, "Map", ""))
		file := attrOr(el, "File", "")
		if !ok || file == "" {
			return false
		}
		if _, seen := slots[kind]; !seen {
			slots[kind] = paths.Texture(file)
		}
		return false
	})
	return slots
}

func attrOr(el *element, name, fallback string) string {
	if v, ok := el.attr(name); ok {
		return v
	}
	return fallback
}

func (r MaterialRecord) String() string {
	return fmt.Sprintf("%s (%d textures)", r.Name, len(r.TextureSlots))
}
