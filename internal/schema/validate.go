package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed report.schema.json
var reportSchemaJSON []byte

// reportSchema is compiled once at package init; a broken embedded schema is
// a build defect, so compilation panics.
var reportSchema = mustCompileSchema(reportSchemaJSON, "report.schema.json")

var printer = message.NewPrinter(language.English)

func mustCompileSchema(raw []byte, name string) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("schema: parse embedded %s: %v", name, err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("schema: add %s: %v", name, err))
	}
	sch, err := c.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("schema: compile %s: %v", name, err))
	}
	return sch
}

// ValidateReport marshals r and checks it against the embedded report schema.
func ValidateReport(r *Report) []string {
	if r == nil {
		return []string{"/: report is nil"}
	}
	b, err := json.Marshal(r)
	if err != nil {
		return []string{fmt.Sprintf("/: marshal: %v", err)}
	}
	return ValidateReportJSON(b)
}

// ValidateReportJSON checks raw report JSON against the embedded schema and
// returns one message per failing location. A nil slice means the report is valid.
func ValidateReportJSON(data []byte) []string {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return []string{fmt.Sprintf("/: json parse: %v", err)}
	}
	err = reportSchema.Validate(inst)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("/: %v", err)}
	}
	var msgs []string
	collect(ve, &msgs)
	return msgs
}

func collect(ve *jsonschema.ValidationError, msgs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/" + strings.Join(ve.InstanceLocation, "/")
		*msgs = append(*msgs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(printer)))
		return
	}
	for _, c := range ve.Causes {
		collect(c, msgs)
	}
}
