package loader

import (
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/neptunedata"
	"github.com/aws/aws-sdk-go-v2/service/neptunedata/types"
)

// rdfExtensionFormats maps RDF file extensions to loader formats.
// Files with an unlisted extension are loaded as Turtle.
var rdfExtensionFormats = map[string]types.Format{
	".ttl":  types.FormatTurtle,
	".nt":   types.FormatNtriples,
	".nq":   types.FormatNquads,
	".rdf":  types.FormatRdfxml,
	".trig": types.FormatTurtle,
}

// ParserConfiguration is the loader's parser configuration map.
type ParserConfiguration struct {
	BaseURI       string `json:"baseUri"`
	NamedGraphURI string `json:"namedGraphUri"`
}

// AsMap renders the configuration in the form the loader API expects.
func (pc ParserConfiguration) AsMap() map[string]string {
	return map[string]string{
		"baseUri":       pc.BaseURI,
		"namedGraphUri": pc.NamedGraphURI,
	}
}

// LoadRequest describes one bulk-ingest job. It is created once, from a
// storage event, and never mutated; once submitted the job is known by
// the loader-assigned load id.
//
// Each file is loaded into its own named graph whose IRI equals the S3
// URI of the file, so that provenance survives later merges of the
// loaded triples into other graphs.
type LoadRequest struct {
	Source                            string              `json:"source"`
	Format                            string              `json:"format"`
	IAMRoleARN                        string              `json:"iamRoleArn"`
	Mode                              string              `json:"mode"`
	Region                            string              `json:"region"`
	FailOnError                       string              `json:"failOnError"`
	Parallelism                       string              `json:"parallelism"`
	ParserConfiguration               ParserConfiguration `json:"parserConfiguration"`
	UpdateSingleCardinalityProperties string              `json:"updateSingleCardinalityProperties"`
	QueueRequest                      bool                `json:"queueRequest"`
	Dependencies                      []string            `json:"dependencies"`
}

// NewLoadRequest builds the load request for one S3 object.
func NewLoadRequest(bucket, key, iamRoleARN, region, idBase string) LoadRequest {
	s3URI := fmt.Sprintf("s3://%s/%s", bucket, key)
	format := types.FormatTurtle
	if f, ok := rdfExtensionFormats[path.Ext(key)]; ok {
		format = f
	}
	return LoadRequest{
		Source:      s3URI,
		Format:      string(format),
		IAMRoleARN:  iamRoleARN,
		Mode:        string(types.ModeAuto),
		Region:      region,
		FailOnError: "TRUE",
		Parallelism: string(types.ParallelismMedium),
		ParserConfiguration: ParserConfiguration{
			BaseURI:       idBase,
			NamedGraphURI: s3URI,
		},
		UpdateSingleCardinalityProperties: "FALSE",
		QueueRequest:                      true,
		Dependencies:                      []string{},
	}
}

// StartLoaderJobInput renders the request for the loader API call.
func (lr LoadRequest) StartLoaderJobInput() *neptunedata.StartLoaderJobInput {
	return &neptunedata.StartLoaderJobInput{
		Source:                            aws.String(lr.Source),
		Format:                            types.Format(lr.Format),
		IamRoleArn:                        aws.String(lr.IAMRoleARN),
		Mode:                              types.Mode(lr.Mode),
		S3BucketRegion:                    types.S3BucketRegion(lr.Region),
		FailOnError:                       aws.Bool(lr.FailOnError == "TRUE"),
		Parallelism:                       types.Parallelism(lr.Parallelism),
		ParserConfiguration:               lr.ParserConfiguration.AsMap(),
		UpdateSingleCardinalityProperties: aws.Bool(lr.UpdateSingleCardinalityProperties == "TRUE"),
		QueueRequest:                      aws.Bool(lr.QueueRequest),
		Dependencies:                      lr.Dependencies,
	}
}
