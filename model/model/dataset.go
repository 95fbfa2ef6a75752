package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ModelOutput discriminator values.
const (
	ModelOutputSingle   = "single"
	ModelOutputMultiple = "multiple"
)

// ClassNames are the categories the inference model predicts. The data
// model treats summaries as open maps; these are only used for fixed
// column layouts on exports.
var ClassNames = []string{"Resting", "Surveilling", "Activated", "Resolution"}

// Summary maps a predicted category to its cell count for one analyzed pair.
type Summary map[string]int

// Add merges other into s key-wise. Keys absent on either side contribute 0.
func (s Summary) Add(other Summary) {
	for key, count := range other {
		s[key] += count
	}
}

// TotalOfSummaries folds the per-file summaries of results into one total.
func TotalOfSummaries(results []AnalysisResult) Summary {
	total := Summary{}
	for i := range results {
		total.Add(results[i].Summary)
	}
	return total
}

// AnalysisResult is the outcome of analyzing one image/annotation pair.
// Image and annotation names are the client supplied names, kept for
// display only. URLs point to objects on the file store.
type AnalysisResult struct {
	Original       string  `bson:"original" json:"original"`
	AnnotationFile string  `bson:"annotation_file" json:"annotationFile"`
	Annotated      string  `bson:"annotated" json:"annotated"`
	Summary        Summary `bson:"summary" json:"summary"`
	ImageName      string  `bson:"image_name,omitempty" json:"imageName,omitempty"`
	AnnotationName string  `bson:"annotation_name,omitempty" json:"annotationName,omitempty"`
}

// ModelOutput holds the analysis output of a dataset. Type discriminates
// between the single pair shape (original/annotation_file/annotated/summary)
// and the multiple pair shape (results/total_summary). The discriminator is
// persisted, never inferred from which fields happen to be set.
type ModelOutput struct {
	Type           string           `bson:"type" json:"type"`
	Original       string           `bson:"original,omitempty" json:"original,omitempty"`
	AnnotationFile string           `bson:"annotation_file,omitempty" json:"annotationFile,omitempty"`
	Annotated      string           `bson:"annotated,omitempty" json:"annotated,omitempty"`
	Summary        Summary          `bson:"summary,omitempty" json:"summary,omitempty"`
	Results        []AnalysisResult `bson:"results,omitempty" json:"results,omitempty"`
	TotalSummary   Summary          `bson:"total_summary,omitempty" json:"totalSummary,omitempty"`
}

// IsMultiple reports whether the output carries per-file results.
func (mo *ModelOutput) IsMultiple() bool {
	return mo.Type == ModelOutputMultiple
}

// FileCount returns the number of analyzed pairs behind this output.
func (mo *ModelOutput) FileCount() int {
	if mo.IsMultiple() {
		return len(mo.Results)
	}
	return 1
}

// AggregateSummary returns the total summary for multiple outputs and the
// plain summary for single outputs.
func (mo *ModelOutput) AggregateSummary() Summary {
	if mo.IsMultiple() {
		return mo.TotalSummary
	}
	return mo.Summary
}

// Dataset is the persisted record of one upload-and-analyze operation.
// (Name, UserID) is unique. ModelOutput is immutable after creation; only
// name and description are updatable.
type Dataset struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	UserID      primitive.ObjectID `bson:"user" json:"userId"`
	// Annotated result image URLs, one per analyzed pair. Derived from
	// ModelOutput at create time.
	Images      []string    `bson:"images" json:"images"`
	ModelOutput ModelOutput `bson:"model_output" json:"modelOutput"`
	CreatedAt   time.Time   `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time   `bson:"updated_at" json:"updatedAt"`
}

// DatasetUpdate carries the only fields an update is allowed to touch.
// Anything else on the request payload is ignored, not rejected.
type DatasetUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}
