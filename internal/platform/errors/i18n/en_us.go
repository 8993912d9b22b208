package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeGangNameEmpty  = "GANG_NAME_EMPTY"
	CodeGangNameTaken  = "GANG_NAME_TAKEN"
	CodeGangTagInvalid = "GANG_TAG_INVALID"
	CodeGangTagTaken   = "GANG_TAG_TAKEN"
	CodeGangNotFound   = "GANG_NOT_FOUND"
	CodeAmountInvalid  = "AMOUNT_INVALID"
	CodeRoleInvalid    = "ROLE_INVALID"
	CodeRoleForbidden  = "ROLE_FORBIDDEN"

	CodeAlreadyInGang = "ALREADY_IN_GANG"
	CodeNotAMember    = "NOT_A_MEMBER"

	CodeInsufficientCash     = "INSUFFICIENT_CASH"
	CodeInsufficientTreasury = "INSUFFICIENT_TREASURY"

	CodeTerritoryNotFound   = "TERRITORY_NOT_FOUND"
	CodeTerritoryOnCooldown = "TERRITORY_ON_COOLDOWN"
	CodeTerritoryOwnGang    = "TERRITORY_ALREADY_CONTROLLED"

	CodeWarNotFound      = "WAR_NOT_FOUND"
	CodeAlreadyAtWar     = "ALREADY_AT_WAR"
	CodeAlreadyJoinedWar = "ALREADY_JOINED_WAR"
	CodeWarNotEligible   = "WAR_NOT_ELIGIBLE"
	CodeWarCompleted     = "WAR_COMPLETED"
	CodeWarWinnerInvalid = "WAR_WINNER_INVALID"

	CodeMissionNotFound   = "MISSION_NOT_FOUND"
	CodeMissionInactive   = "MISSION_INACTIVE"
	CodeMissionOnCooldown = "MISSION_ON_COOLDOWN"
	CodeNotEnoughMembers  = "NOT_ENOUGH_MEMBERS"
	CodeAttemptInProgress = "ATTEMPT_IN_PROGRESS"
	CodeAttemptNotFound   = "ATTEMPT_NOT_FOUND"
	CodeAttemptNotReady   = "ATTEMPT_NOT_READY"

	CodeNotFound = "NOT_FOUND"
	CodeStorage  = "STORAGE_FAILURE"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		// Gang errors
		CodeGangNameEmpty:  "Gang name cannot be empty",
		CodeGangNameTaken:  "A gang named {{.Name}} already exists",
		CodeGangTagInvalid: "Gang tag must be 2 to 5 characters",
		CodeGangTagTaken:   "The tag {{.Tag}} is already in use",
		CodeGangNotFound:   "That gang no longer exists",
		CodeAmountInvalid:  "Amount must be a positive whole number",
		CodeRoleInvalid:    "That is not a recognized gang role",
		CodeRoleForbidden:  "Your rank does not allow that",

		// Roster errors
		CodeAlreadyInGang: "You already belong to a gang",
		CodeNotAMember:    "That player is not a member of this gang",

		// Ledger errors
		CodeInsufficientCash:     "You do not have {{.Amount}} in cash",
		CodeInsufficientTreasury: "The gang treasury does not hold {{.Amount}}",

		// Territory errors
		CodeTerritoryNotFound:   "That territory does not exist",
		CodeTerritoryOnCooldown: "This territory was attacked recently and cannot be attacked yet",
		CodeTerritoryOwnGang:    "Your gang already controls this territory",

		// War errors
		CodeWarNotFound:      "That war no longer exists",
		CodeAlreadyAtWar:     "A war over this territory is already underway",
		CodeAlreadyJoinedWar: "You already joined this war",
		CodeWarNotEligible:   "Your gang has no stake in this war",
		CodeWarCompleted:     "This war has already been resolved",
		CodeWarWinnerInvalid: "The winner must be one of the warring gangs",

		// Mission errors
		CodeMissionNotFound:   "That mission does not exist",
		CodeMissionInactive:   "This mission is not currently available",
		CodeMissionOnCooldown: "This mission is still on cooldown",
		CodeNotEnoughMembers:  "This mission requires {{.Required}} gang members",
		CodeAttemptInProgress: "Your gang is already running this mission",
		CodeAttemptNotFound:   "That mission attempt does not exist",
		CodeAttemptNotReady:   "The mission rewards are not ready to collect",

		// Storage errors
		CodeNotFound: "The requested record was not found",
		CodeStorage:  "A storage failure occurred, please try again",
	},
}
