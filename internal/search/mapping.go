package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// MappingField is one field definition in the index mapping.
type MappingField struct {
	Type string `json:"type"`
}

// CaseRecordMapping represents the Elasticsearch mapping for case records.
type CaseRecordMapping struct {
	Settings CaseRecordSettings `json:"settings"`
	Mappings CaseRecordMappings `json:"mappings"`
}

// CaseRecordSettings defines index-level settings
type CaseRecordSettings struct {
	NumberOfShards   int `json:"number_of_shards"`
	NumberOfReplicas int `json:"number_of_replicas"`
}

// CaseRecordMappings defines the field mappings for case records
type CaseRecordMappings struct {
	Properties CaseRecordProperties `json:"properties"`
}

// CaseRecordProperties defines the properties for each field in the case
// record mapping. Party and place fields are analyzed text so the cascade's
// fuzzy match clauses apply; everything identifying is also a keyword.
type CaseRecordProperties struct {
	// Core identifiers
	CNR       MappingField `json:"cnr"`
	PartyType MappingField `json:"party_type"`

	// Party fields, analyzed for the cascade's match clauses
	Name         MappingField `json:"name"`
	ModifiedName MappingField `json:"modified_name"`
	Relative     MappingField `json:"relative"`
	RelationType MappingField `json:"relation_type"`

	// Jurisdiction. State and district are keywords: the cascade filters
	// them with exact term clauses on lowercased values.
	CaseLocation MappingField `json:"case_location"`
	CaseState    MappingField `json:"case_state"`
	CaseDistrict MappingField `json:"case_district"`
	CaseCourt    MappingField `json:"case_court"`

	// Case descriptors
	CaseStage        MappingField `json:"case_stage"`
	FIRPoliceStation MappingField `json:"fir_police_station"`
	ActSection       MappingField `json:"act_section"`
	OrderExists      MappingField `json:"order_exists"`
}

// NewCaseRecordMapping creates the case record mapping with default settings.
func NewCaseRecordMapping() *CaseRecordMapping {
	text := MappingField{Type: "text"}
	keyword := MappingField{Type: "keyword"}

	return &CaseRecordMapping{
		Settings: CaseRecordSettings{
			NumberOfShards:   1,
			NumberOfReplicas: 1,
		},
		Mappings: CaseRecordMappings{
			Properties: CaseRecordProperties{
				CNR:              keyword,
				PartyType:        keyword,
				Name:             text,
				ModifiedName:     text,
				Relative:         text,
				RelationType:     keyword,
				CaseLocation:     text,
				CaseState:        keyword,
				CaseDistrict:     keyword,
				CaseCourt:        text,
				CaseStage:        keyword,
				FIRPoliceStation: text,
				ActSection:       text,
				OrderExists:      keyword,
			},
		},
	}
}

// JSON serializes the mapping for index creation.
func (m *CaseRecordMapping) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// EnsureIndex creates the case records index with the standard mapping if
// it does not already exist. The worker only reads the index; this exists
// for fresh deployments and test clusters.
func (c *Client) EnsureIndex(ctx context.Context) error {
	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", c.index, err)
	}
	defer res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	body, err := NewCaseRecordMapping().JSON()
	if err != nil {
		return fmt.Errorf("marshal mapping: %w", err)
	}

	createRes, err := c.es.Indices.Create(
		c.index,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", c.index, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("create index %s: %s", c.index, createRes.String())
	}
	return nil
}
