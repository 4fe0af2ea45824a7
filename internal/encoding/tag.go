package encoding

// Tag names an input or output image slot.
type Tag string

const (
	TagColor     Tag = "color"
	TagOpacity   Tag = "opacity"
	TagHeight    Tag = "height"
	TagNormal    Tag = "normal"
	TagOcclusion Tag = "occlusion"
	TagSpecular  Tag = "specular"
	TagSmooth    Tag = "smooth"
	TagRough     Tag = "rough"
	TagMetal     Tag = "metal"
	TagF0        Tag = "f0"
	TagHCM       Tag = "hcm"
	TagPorosity  Tag = "porosity"
	TagSSS       Tag = "sss"
	TagEmissive  Tag = "emissive"
	TagMER       Tag = "mer"
	TagMERS      Tag = "mers"
)

// AllTags lists every known tag.
var AllTags = []Tag{
	TagColor, TagOpacity, TagHeight, TagNormal, TagOcclusion, TagSpecular,
	TagSmooth, TagRough, TagMetal, TagF0, TagHCM, TagPorosity, TagSSS,
	TagEmissive, TagMER, TagMERS,
}

// Edition is the Minecraft edition a pack targets.
type Edition string

const (
	Java    Edition = "java"
	Bedrock Edition = "bedrock"
)
