package scene

// Material is the shading description bound to a mesh slot. The node graph
// itself belongs to the shading backend; the scene keeps the inputs wired.
type Material struct {
	Name   string
	Shader string
	Inputs []TextureInput
}

type TextureInput struct {
	Socket     string
	Path       string
	ColorSpace string
	// NormalMap marks inputs routed through a normal map converter.
	NormalMap bool
	Width     int
	Height    int
}

func (m *Material) Input(socket string) (TextureInput, bool) {
	for _, in := range m.Inputs {
		if in.Socket == socket {
			return in, true
		}
	}
	return TextureInput{}, false
}
