package lifecycle

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// stageDefinition pairs a stage name with its canonical description, in
// display order around the cycle.
type stageDefinition struct {
	ID          string
	Description string
}

// stageDefinitions are the twelve stages of the research data lifecycle
// with their published definitions.
var stageDefinitions = []stageDefinition{
	{"CONCEPTUALISE", "To formulate the initial research idea or hypothesis, and define the scope of the research project and the data component/requirements of that project."},
	{"PLAN", "To establish a structured strategic framework for management of the research project, outlining aims, objectives, methodologies, and resources required for data collection, management and analysis. Data management plans (DMP) should be established for this phase of the lifecycle."},
	{"FUND", "To identify and acquire financial resources to support the research project, including data collection, management, analysis, sharing, publishing and preservation."},
	{"COLLECT", "To use predefined procedures, methodologies and instruments to acquire and store data that is reliable, fit for purpose and of sufficient quality to test the research hypothesis."},
	{"PROCESS", "To make new and existing data analysis-ready. This may involve standardised pre-processing, cleaning, reformatting, structuring, filtering, and performing quality control checks on data. It may also involve the creation and definition of metadata for use during analysis, such as acquiring provenance from instruments and tools used during data collection."},
	{"ANALYSE", "To derive insights, knowledge, and understanding from processed data. Data analysis involves iterative exploration and interpretation of experimental or computational results, often utilising mathematical models and formulae to investigate relationships between experimental variables. Distinct data analysis techniques and methodologies are applied according to the data type (quantitative vs qualitative)."},
	{"STORE", "To record data using technological media appropriate for processing and analysis whilst maintaining data integrity and security."},
	{"PUBLISH", "To release research data in published form for use by others with appropriate metadata for citation (including a unique persistent identifier) based on FAIR principles."},
	{"PRESERVE", "To ensure the safety, integrity, and accessibility of data for as long as necessary so that data is as FAIR as possible. Data preservation is more than data storage and backup, since data can be stored and backed up without being preserved. Preservation should include curation activities such as data cleaning, validation, assigning preservation metadata, assigning representation information, and ensuring acceptable data structures and file formats. At a minimum, data and associated metadata should be published in a trustworthy digital repository and clearly cited in the accompanying journal article unless this is not possible (e.g. due to the privacy or safety concerns)."},
	{"SHARE", "To make data available and accessible to humans and/or machines. Data may be shared with project collaborators or published to share it with the wider research community and society at large. Data sharing is not limited to open data or public data, and can be done during various stages of the research data lifecycle. At a minimum, data and associated metadata should be published in a trustworthy digital repository and clearly cited in the accompanying journal article."},
	{"ACCESS", "To control and manage data access by designated users and reusers. This may be in the form of publicly available published information. Necessary access control and authentication methods are applied."},
	{"TRANSFORM", "To create new data from the original, for example: (i) by migration into a different format; (ii) by creating a subset, by selection or query, to create newly derived results, perhaps for publication; or, iii) combining or appending with other data"},
}

// defaultConnections is the seed topology: the full normal cycle plus the
// dashed shortcut paths of the lifecycle map.
var defaultConnections = []Connection{
	{StartStageID: "CONCEPTUALISE", EndStageID: "PLAN", Kind: KindNormal},
	{StartStageID: "PLAN", EndStageID: "FUND", Kind: KindNormal},
	{StartStageID: "FUND", EndStageID: "COLLECT", Kind: KindNormal},
	{StartStageID: "COLLECT", EndStageID: "PROCESS", Kind: KindNormal},
	{StartStageID: "PROCESS", EndStageID: "ANALYSE", Kind: KindNormal},
	{StartStageID: "ANALYSE", EndStageID: "STORE", Kind: KindNormal},
	{StartStageID: "STORE", EndStageID: "PUBLISH", Kind: KindNormal},
	{StartStageID: "PUBLISH", EndStageID: "PRESERVE", Kind: KindNormal},
	{StartStageID: "PRESERVE", EndStageID: "SHARE", Kind: KindNormal},
	{StartStageID: "SHARE", EndStageID: "ACCESS", Kind: KindNormal},
	{StartStageID: "ACCESS", EndStageID: "TRANSFORM", Kind: KindNormal},
	{StartStageID: "TRANSFORM", EndStageID: "CONCEPTUALISE", Kind: KindNormal},

	{StartStageID: "COLLECT", EndStageID: "ANALYSE", Kind: KindAlternate},
	{StartStageID: "ANALYSE", EndStageID: "COLLECT", Kind: KindAlternate},
	{StartStageID: "STORE", EndStageID: "PROCESS", Kind: KindAlternate},
	{StartStageID: "PUBLISH", EndStageID: "SHARE", Kind: KindAlternate},
}

// SeedReport holds counts of seeded rows.
type SeedReport struct {
	Stages      int `json:"stages"`
	Substages   int `json:"substages"`
	Tools       int `json:"tools"`
	Connections int `json:"connections"`
}

// Seeded reports whether the store already holds stage rows. Seeding runs
// once; an already-seeded store is left alone.
func (s *Store) Seeded() (bool, error) {
	st, err := s.Stats()
	if err != nil {
		return false, err
	}
	return st.Stages > 0, nil
}

// Seed populates an empty store with the built-in twelve-stage cycle and
// its connections. Seeding an already-populated store is a no-op.
func (s *Store) Seed() (*SeedReport, error) {
	seeded, err := s.Seeded()
	if err != nil {
		return nil, err
	}
	if seeded {
		return &SeedReport{}, nil
	}

	var report SeedReport
	for i, def := range stageDefinitions {
		if _, err := s.InsertStage(Stage{ID: def.ID, Description: def.Description, Position: i + 1}); err != nil {
			return nil, err
		}
		report.Stages++
	}
	for _, c := range defaultConnections {
		if _, err := s.InsertConnection(c); err != nil {
			return nil, err
		}
		report.Connections++
	}
	return &report, nil
}

// CSV column headers, as exported from the lifecycle tools spreadsheet.
const (
	csvColStage       = "RESEARCH DATA LIFECYCLE STAGE"
	csvColCategory    = "TOOL CATEGORY TYPE"
	csvColDescription = "DESCRIPTION (1 SENTENCE)"
	csvColExamples    = "EXAMPLES"
)

// SeedFromCSV loads substages and tools from the lifecycle tools CSV on
// top of the built-in stage and connection seed. Each row describes one
// tool category under a stage: the category becomes a substage and its
// comma-separated examples become tools. Rows referencing unknown stages
// are a ValidationError before anything is written.
func (s *Store) SeedFromCSV(r io.Reader) (*SeedReport, error) {
	report, err := s.Seed()
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("lifecycle: read csv header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[normalizeHeader(h)] = i
	}
	for _, required := range []string{csvColStage, csvColCategory, csvColDescription, csvColExamples} {
		if _, ok := cols[required]; !ok {
			return nil, &ValidationError{Field: "csv", Reason: fmt.Sprintf("missing column %q", required)}
		}
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("lifecycle: read csv row: %w", err)
		}

		stageID := strings.TrimSpace(field(record, cols[csvColStage]))
		category := strings.TrimSpace(field(record, cols[csvColCategory]))
		desc := strings.TrimSpace(field(record, cols[csvColDescription]))
		examples := strings.TrimSpace(field(record, cols[csvColExamples]))
		if stageID == "" || category == "" {
			continue
		}

		if _, err := s.InsertSubstage(Substage{
			StageID:     stageID,
			Name:        category,
			Description: desc,
			Exemplars:   examples,
		}); err != nil {
			return nil, err
		}
		report.Substages++

		for _, name := range strings.Split(examples, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			_, err := s.InsertTool(NewToolParams{
				StageID:     stageID,
				Name:        name,
				Description: desc,
				Provider:    category,
			})
			if IsConflict(err) {
				continue // same tool listed under two categories of one stage
			}
			if err != nil {
				return nil, err
			}
			report.Tools++
		}
	}

	return report, nil
}

// normalizeHeader collapses the whitespace quirks the spreadsheet export
// leaves in column names.
func normalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(h, "\n", " ")), " ")
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}
