package sdk

// ErrorCode is a DandB business error code as reported in meta.error_code.
type ErrorCode string

// String returns the raw code
func (c ErrorCode) String() string {
	return string(c)
}

// Authentication and verification errors.
const (
	CodeTransactionIDIsInvalid            ErrorCode = "ATH001"
	CodeBusinessIDIsInvalid               ErrorCode = "ATH002"
	CodeQuestionSetAlreadyAttempted       ErrorCode = "ATH003"
	CodeQuestionSetNotPresented           ErrorCode = "ATH004"
	CodeIncorrectNumberOfQuestions        ErrorCode = "ATH005"
	CodeInvalidFileExtension              ErrorCode = "ATH006"
	CodeAssetDoesNotExist                 ErrorCode = "ATH007"
	CodePhoneVerificationAlreadyAttempted ErrorCode = "ATH008"
	CodeQuestionSetMapperFindFailure      ErrorCode = "ATH009"
	CodeOAuthServerException              ErrorCode = "ATH010"
)

// User account, token and order errors.
const (
	CodeUserIsNotActive                            ErrorCode = "USR001"
	CodeUserRouteIncorrectCredentials              ErrorCode = "USR002"
	CodeUserRouteAccountEmailUnavailable           ErrorCode = "USR003"
	CodeUserRouteEmailDoesNotExist                 ErrorCode = "USR004"
	CodeUserRouteIncorrectOldPassword              ErrorCode = "USR005"
	CodeUserRoutePaymentTypeIncorrect              ErrorCode = "USR006"
	CodeUserRouteOrderPreparationFailure           ErrorCode = "USR007"
	CodeUserRouteOrderFailure                      ErrorCode = "USR008"
	CodeUserRouteProductShouldBeFree               ErrorCode = "USR009"
	CodeUserRouteAlertPreferenceUnavailable        ErrorCode = "USR010"
	CodeUserRouteInvalidUserToken                  ErrorCode = "USR011"
	CodeUserRegisterRouteEmptyAddressParam         ErrorCode = "USR012"
	CodeUserMapperPreferencesNotFound              ErrorCode = "USR013"
	CodeUserDisableError                           ErrorCode = "USR014"
	CodeUserEnableError                            ErrorCode = "USR015"
	CodeUserEnableErrorDisabledPartnerUserNotFound ErrorCode = "USR016"
	CodeUserMapperEnableUserPasswordError          ErrorCode = "USR017"
	CodeUserControllerDisableNotPartnerUserError   ErrorCode = "USR018"
	CodeUserRouteSimilarProductAlreadyPurchased    ErrorCode = "USR019"
	CodeUserTokenInvalid                           ErrorCode = "USR020"
	CodeUserTokenMissing                           ErrorCode = "USR021"
	CodeUserDeleted                                ErrorCode = "USR022"
	CodeUserTokenInvalidExpired                    ErrorCode = "USR023"
	CodeUserLoginError                             ErrorCode = "USR024"
	CodeTOSAcceptError                             ErrorCode = "USR025"
	CodeErrorDuplicateItemsInOrder                 ErrorCode = "USR026"
	CodeIncorrectOrderSyntax                       ErrorCode = "USR027"
	CodeMalformedParameter                         ErrorCode = "USR028"
	CodeAddressFieldsMissing                       ErrorCode = "USR029"
	CodeUserTokenExpired                           ErrorCode = "USR030"
	CodeUserMapperErrorCancellationService         ErrorCode = "USR031"
	CodeUserNotFound                               ErrorCode = "USR032"
	CodeIncorrectUserType                          ErrorCode = "USR033"
)

// errorCodesByName maps the symbolic names used by the DandB API
// documentation to their codes.
var errorCodesByName = map[string]ErrorCode{
	"TRANSACTION_ID_IS_INVALID":                         CodeTransactionIDIsInvalid,
	"BUSINESS_ID_IS_INVALID":                            CodeBusinessIDIsInvalid,
	"QUESTION_SET_ALREADY_ATTEMPTED":                    CodeQuestionSetAlreadyAttempted,
	"QUESTION_SET_NOT_PRESENTED":                        CodeQuestionSetNotPresented,
	"INCORRECT_NUMBER_OF_QUESTIONS":                     CodeIncorrectNumberOfQuestions,
	"INVALID_FILE_EXTENSION":                            CodeInvalidFileExtension,
	"ASSET_DOES_NOT_EXIST":                              CodeAssetDoesNotExist,
	"PHONE_VERIFICATION_ALREADY_ATTEMPTED":              CodePhoneVerificationAlreadyAttempted,
	"QUESTION_SET_MAPPER_FIND_FAILURE":                  CodeQuestionSetMapperFindFailure,
	"OAUTH_SERVER_EXCEPTION":                            CodeOAuthServerException,
	"USER_IS_NOT_ACTIVE":                                CodeUserIsNotActive,
	"USER_ROUTE_INCORRECT_CREDENTIALS":                  CodeUserRouteIncorrectCredentials,
	"USER_ROUTE_ACCOUNT_EMAIL_UNAVAILABLE":              CodeUserRouteAccountEmailUnavailable,
	"USER_ROUTE_EMAIL_DOES_NOT_EXIST":                   CodeUserRouteEmailDoesNotExist,
	"USER_ROUTE_INCORRECT_OLD_PASSWORD":                 CodeUserRouteIncorrectOldPassword,
	"USER_ROUTE_PAYMENT_TYPE_INCORRECT":                 CodeUserRoutePaymentTypeIncorrect,
	"USER_ROUTE_ORDER_PREPARATION_FAILURE":              CodeUserRouteOrderPreparationFailure,
	"USER_ROUTE_ORDER_FAILURE":                          CodeUserRouteOrderFailure,
	"USER_ROUTE_PRODUCT_SHOULD_BE_FREE":                 CodeUserRouteProductShouldBeFree,
	"USER_ROUTE_ALERT_PREFERENCE_UNAVAILABLE":           CodeUserRouteAlertPreferenceUnavailable,
	"USER_ROUTE_INVALID_USER_TOKEN":                     CodeUserRouteInvalidUserToken,
	"USER_REGISTER_ROUTE_EMPTY_ADDRESS_PARAM":           CodeUserRegisterRouteEmptyAddressParam,
	"USER_MAPPER_PREFERENCES_NOT_FOUND":                 CodeUserMapperPreferencesNotFound,
	"USER_DISABLE_ERROR":                                CodeUserDisableError,
	"USER_ENABLE_ERROR":                                 CodeUserEnableError,
	"USER_ENABLE_ERROR_DISABLED_PARTNER_USER_NOT_FOUND": CodeUserEnableErrorDisabledPartnerUserNotFound,
	"USER_MAPPER_ENABLE_USER_PASSWORD_ERROR":            CodeUserMapperEnableUserPasswordError,
	"USER_CONTROLLER_DISABLE_NOT_PARTNER_USER_ERROR":    CodeUserControllerDisableNotPartnerUserError,
	"USER_ROUTE_SIMILAR_PRODUCT_ALREADY_PURCHASED":      CodeUserRouteSimilarProductAlreadyPurchased,
	"USER_TOKEN_INVALID":                                CodeUserTokenInvalid,
	"USER_TOKEN_MISSING":                                CodeUserTokenMissing,
	"USER_DELETED":                                      CodeUserDeleted,
	"USER_TOKEN_INVALID_EXPIRED":                        CodeUserTokenInvalidExpired,
	"USER_LOGIN_ERROR":                                  CodeUserLoginError,
	"TOS_ACCEPT_ERROR":                                  CodeTOSAcceptError,
	"ERROR_DUPLICATE_ITEMS_IN_ORDER":                    CodeErrorDuplicateItemsInOrder,
	"INCORRECT_ORDER_SYNTAX":                            CodeIncorrectOrderSyntax,
	"MALFORMED_PARAMETER":                               CodeMalformedParameter,
	"ADDRESS_FIELDS_MISSING":                            CodeAddressFieldsMissing,
	"USER_TOKEN_EXPIRED":                                CodeUserTokenExpired,
	"USER_MAPPER_ERROR_CANCELLATION_SERVICE":            CodeUserMapperErrorCancellationService,
	"USER_NOT_FOUND":                                    CodeUserNotFound,
	"INCORRECT_USER_TYPE":                               CodeIncorrectUserType,
}

var errorNamesByCode = func() map[ErrorCode]string {
	m := make(map[ErrorCode]string, len(errorCodesByName))
	for name, code := range errorCodesByName {
		m[code] = name
	}
	return m
}()

// LookupErrorCode resolves a symbolic name such as "USER_TOKEN_EXPIRED".
// Unknown names report false.
func LookupErrorCode(name string) (ErrorCode, bool) {
	code, ok := errorCodesByName[name]
	return code, ok
}

// ErrorCodeName returns the symbolic name of a code, e.g. "USR030" -> "USER_TOKEN_EXPIRED".
func ErrorCodeName(code ErrorCode) (string, bool) {
	name, ok := errorNamesByCode[code]
	return name, ok
}

// ErrorCodes returns a copy of the full name to code catalog.
func ErrorCodes() map[string]ErrorCode {
	m := make(map[string]ErrorCode, len(errorCodesByName))
	for name, code := range errorCodesByName {
		m[name] = code
	}
	return m
}
