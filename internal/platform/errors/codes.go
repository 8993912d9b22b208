// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Gang errors
	CodeGangNameEmpty   Code = "GANG_NAME_EMPTY"
	CodeGangNameTaken   Code = "GANG_NAME_TAKEN"
	CodeGangTagInvalid  Code = "GANG_TAG_INVALID"
	CodeGangTagTaken    Code = "GANG_TAG_TAKEN"
	CodeGangNotFound    Code = "GANG_NOT_FOUND"
	CodeAmountInvalid   Code = "AMOUNT_INVALID"
	CodeRoleInvalid     Code = "ROLE_INVALID"
	CodeRoleForbidden   Code = "ROLE_FORBIDDEN"

	// Roster errors
	CodeAlreadyInGang Code = "ALREADY_IN_GANG"
	CodeNotAMember    Code = "NOT_A_MEMBER"

	// Ledger errors
	CodeInsufficientCash     Code = "INSUFFICIENT_CASH"
	CodeInsufficientTreasury Code = "INSUFFICIENT_TREASURY"

	// Territory errors
	CodeTerritoryNotFound   Code = "TERRITORY_NOT_FOUND"
	CodeTerritoryOnCooldown Code = "TERRITORY_ON_COOLDOWN"
	CodeTerritoryOwnGang    Code = "TERRITORY_ALREADY_CONTROLLED"

	// War errors
	CodeWarNotFound      Code = "WAR_NOT_FOUND"
	CodeAlreadyAtWar     Code = "ALREADY_AT_WAR"
	CodeAlreadyJoinedWar Code = "ALREADY_JOINED_WAR"
	CodeWarNotEligible   Code = "WAR_NOT_ELIGIBLE"
	CodeWarCompleted     Code = "WAR_COMPLETED"
	CodeWarWinnerInvalid Code = "WAR_WINNER_INVALID"

	// Mission errors
	CodeMissionNotFound    Code = "MISSION_NOT_FOUND"
	CodeMissionInactive    Code = "MISSION_INACTIVE"
	CodeMissionOnCooldown  Code = "MISSION_ON_COOLDOWN"
	CodeNotEnoughMembers   Code = "NOT_ENOUGH_MEMBERS"
	CodeAttemptInProgress  Code = "ATTEMPT_IN_PROGRESS"
	CodeAttemptNotFound    Code = "ATTEMPT_NOT_FOUND"
	CodeAttemptNotReady    Code = "ATTEMPT_NOT_READY"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
	CodeStorage  Code = "STORAGE_FAILURE"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeGangNameEmpty,
		CodeGangTagInvalid,
		CodeAmountInvalid,
		CodeRoleInvalid,
		CodeWarWinnerInvalid:
		return codes.InvalidArgument

	// AlreadyExists - uniqueness violations
	case CodeGangNameTaken,
		CodeGangTagTaken:
		return codes.AlreadyExists

	// PermissionDenied - caller lacks the required role or stake
	case CodeRoleForbidden,
		CodeNotAMember,
		CodeWarNotEligible:
		return codes.PermissionDenied

	// FailedPrecondition - state doesn't allow operation
	case CodeAlreadyInGang,
		CodeInsufficientCash,
		CodeInsufficientTreasury,
		CodeTerritoryOnCooldown,
		CodeTerritoryOwnGang,
		CodeAlreadyAtWar,
		CodeAlreadyJoinedWar,
		CodeWarCompleted,
		CodeMissionInactive,
		CodeMissionOnCooldown,
		CodeNotEnoughMembers,
		CodeAttemptInProgress,
		CodeAttemptNotReady:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeGangNotFound,
		CodeTerritoryNotFound,
		CodeWarNotFound,
		CodeMissionNotFound,
		CodeAttemptNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
