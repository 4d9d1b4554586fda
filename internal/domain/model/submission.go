package model

// SubmissionMetaobjectType is the Shopify metaobject definition a finalized
// submission is persisted under.
const SubmissionMetaobjectType = "consignment_submission"

// StatusNew is the only initial status a submission can be created with.
const StatusNew = "New"

// SubmissionTypeQuickQuote is the only submission type this service creates.
const SubmissionTypeQuickQuote = "Quick Quote"

// BrandNotListed is the storefront sentinel meaning the seller typed a brand
// into the free-text override field instead of picking one from the list.
const BrandNotListed = "Brand Not Listed"

// ImagesFieldKey is the metaobject field that carries the JSON-encoded array
// of uploaded file IDs.
const ImagesFieldKey = "submission_images"

// conditionDescriptions expands the storefront's condition labels into the
// longer descriptions shown to staff. Unrecognized labels pass through as-is.
var conditionDescriptions = map[string]string{
	"New / Never Used": "New / Never Used: Never been worn, with or without tags.",
	"Excellent":        "Excellent: Worn a few times, minimal signs of use.",
	"Good":             "Good: Light signs of use, overall good condition.",
	"Acceptable":       "Acceptable: Visible signs of use, still wearable and presentable.",
}

// DescribeCondition returns the expanded description for a condition label,
// or the label unchanged when it has no mapping.
func DescribeCondition(condition string) string {
	if desc, ok := conditionDescriptions[condition]; ok {
		return desc
	}
	return condition
}

// MetaobjectField is one key/value pair of the submission metaobject.
type MetaobjectField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SubmissionResult is what a successful finalize returns to the storefront:
// the handle of the created metaobject and how many images actually attached.
type SubmissionResult struct {
	Handle    string
	FileCount int
}
