package loaders

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mmalewski/Mech-Importer/engine/core"
	"github.com/mmalewski/Mech-Importer/engine/math"
)

// AttachmentRecord is one geometry part of a model descriptor.
type AttachmentRecord struct {
	Name        string
	Rotation    math.Quat
	Position    math.Vec3
	BoneName    string
	BindingPath string
	Flags       string
}

// SkippedAttachment is an Attachment element that could not be turned into a
// record. Index is its position among all Attachment elements.
type SkippedAttachment struct {
	Index int
	Name  string
	Err   error
}

type AttachmentList struct {
	Path    string
	Records []AttachmentRecord
	Skipped []SkippedAttachment
}

// ParseAttachments reads every Attachment element of a model descriptor in
// document order. The error is core.ErrDescriptorNotFound or
// core.ErrMalformedDescriptor for the file as a whole; bad individual
// elements end up in Skipped.
func ParseAttachments(path string, paths Paths) (AttachmentList, error) {
	root, err := readDescriptor(path)
	if err != nil {
		return AttachmentList{Path: path}, err
	}

	list := AttachmentList{Path: path}
	for i, el := range root.findAll("Attachment") {
		rec, err := attachmentFromElement(el, paths)
		if err != nil {
			list.Skipped = append(list.Skipped, SkippedAttachment{Index: i, Name: rec.Name, Err: err})
			continue
		}
		list.Records = append(list.Records, rec)
	}
	core.LogDebug("parsed %d attachments from %s (%d skipped)", len(list.Records), path, len(list.Skipped))
	return list, nil
}

func attachmentFromElement(el *element, paths Paths) (AttachmentRecord, error) {
	rec := AttachmentRecord{
		Rotation: mgl32.QuatIdent(),
	}
	name, ok := el.attr("AName")
	if !ok || name == "" {
		return rec, fmt.Errorf("%w: attachment without AName", core.ErrMalformedDescriptor)
	}
	rec.Name = name

	if s, ok := el.attr("Rotation"); ok {
		q, err := math.ParseQuaternionWXYZ(s)
		if err != nil {
			return rec, fmt.Errorf("%w: %s: rotation: %v", core.ErrMalformedDescriptor, name, err)
		}
		rec.Rotation = q
	}
	if s, ok := el.attr("Position"); ok {
		p, err := math.ParseVec3(s)
		if err != nil {
			return rec, fmt.Errorf("%w: %s: position: %v", core.ErrMalformedDescriptor, name, err)
		}
		rec.Position = p
	}
	if s, ok := el.attr("BoneName"); ok {
		rec.BoneName = NormalizeBoneName(s)
	}
	if s, ok := el.attr("Binding"); ok && s != "" {
		rec.BindingPath = paths.Mesh(s)
	}
	rec.Flags, _ = el.attr("Flags")
	return rec, nil
}
