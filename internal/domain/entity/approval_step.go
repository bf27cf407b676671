package entity

import "time"

// ApprovalStep is one position in a request's approval chain
type ApprovalStep struct {
	ApproverName string     `json:"approverName"`
	Role         string     `json:"role"`
	Status       StepStatus `json:"status"`
	DecidedAt    *time.Time `json:"decidedAt"`
	Comment      string     `json:"comment,omitempty"`
}

// ChainStage describes a configured approval stage
type ChainStage struct {
	Role     string
	Approver string
}

// NewApprovalChain builds an undecided chain from the configured stages
func NewApprovalChain(stages []ChainStage) []ApprovalStep {
	steps := make([]ApprovalStep, 0, len(stages))
	for _, stage := range stages {
		steps = append(steps, ApprovalStep{
			ApproverName: stage.Approver,
			Role:         stage.Role,
			Status:       StepWaiting,
		})
	}
	return steps
}

// Stages returns the role/approver pairs of an existing chain
func Stages(steps []ApprovalStep) []ChainStage {
	stages := make([]ChainStage, 0, len(steps))
	for _, step := range steps {
		stages = append(stages, ChainStage{Role: step.Role, Approver: step.ApproverName})
	}
	return stages
}
