package model

import (
	"time"

	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&SizingRun{},
	&ComponentRecord{},
}

// SizingRun is one evaluation of a drivetrain or hub assembly.
type SizingRun struct {
	ID         string            `json:"id" gorm:"primaryKey;size:36"`
	Assembly   string            `json:"assembly" gorm:"size:16;index:idx_run_assembly"`
	Preset     string            `json:"preset" gorm:"size:32;index:idx_run_preset"`
	StartedAt  time.Time         `json:"startedAt" gorm:"index:idx_run_started"`
	FinishedAt time.Time         `json:"finishedAt"`
	Inputs     datatypes.JSON    `json:"inputs"`
	Outputs    datatypes.JSON    `json:"outputs"`
	TotalMass  float64           `json:"totalMass"`
	TotalCost  float64           `json:"totalCost"`
	Components []ComponentRecord `json:"components" gorm:"foreignKey:RunID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (*SizingRun) TableName() string {
	return "sizing_runs"
}

// ComponentRecord is one row of a run's mass and cost breakdown.
type ComponentRecord struct {
	ID       uint    `json:"id" gorm:"primarykey;autoIncrement"`
	RunID    string  `json:"runId" gorm:"size:36;index:idx_component_run_id"`
	Position int     `json:"position"`
	Name     string  `json:"name" gorm:"size:32"`
	Mass     float64 `json:"mass"`
	Cost     float64 `json:"cost"`
	CMX      float64 `json:"cmX"`
	CMY      float64 `json:"cmY"`
	CMZ      float64 `json:"cmZ"`
	Length   float64 `json:"length"`
	Height   float64 `json:"height"`
	Width    float64 `json:"width"`
}

func (*ComponentRecord) TableName() string {
	return "component_records"
}
