package masklog

import (
	"fmt"
	"strconv"
	"time"

	"github.com/wachat/masklog/pkg/types"
)

// Field names a record field settable through Update.
type Field string

// Fields with a dedicated slot in the record. Any other name is stored as a
// custom field.
const (
	FieldService           Field = "service"
	FieldVersion           Field = "version"
	FieldHostname          Field = "hostname"
	FieldModule            Field = "module"
	FieldSessionID         Field = "sessionId"
	FieldTransactionID     Field = "transactionId"
	FieldRequestID         Field = "requestId"
	FieldUserID            Field = "userId"
	FieldAction            Field = "action"
	FieldActionDescription Field = "actionDescription"
	FieldSubAction         Field = "subAction"
	FieldDependency        Field = "dependency"
	FieldResponseTime      Field = "responseTime"
	FieldResultCode        Field = "resultCode"
	FieldResultMessage     Field = "resultMessage"
	FieldResultFlag        Field = "resultFlag"
	FieldErrorStack        Field = "errorStack"
)

// Dependency describes the downstream call a detail record is about.
// Zero-valued fields are left untouched by SetDependencyMetadata.
type Dependency struct {
	Name         string
	ResponseTime time.Duration
	ResultCode   string
	ResultFlag   string
}

func setField(rec *types.Record, key Field, value any) {
	switch key {
	case FieldService:
		rec.Service = str(value)
	case FieldVersion:
		rec.Version = str(value)
	case FieldHostname:
		rec.Hostname = str(value)
	case FieldModule:
		rec.Module = str(value)
	case FieldSessionID:
		rec.SessionID = str(value)
	case FieldTransactionID:
		rec.TransactionID = str(value)
	case FieldRequestID:
		rec.RequestID = str(value)
	case FieldUserID:
		rec.UserID = str(value)
	case FieldAction:
		rec.Action = str(value)
	case FieldActionDescription:
		rec.ActionDescription = str(value)
	case FieldSubAction:
		rec.SubAction = str(value)
	case FieldDependency:
		rec.Dependency = str(value)
	case FieldResponseTime:
		rec.ResponseTime = millis(value)
	case FieldResultCode:
		rec.ResultCode = str(value)
	case FieldResultMessage:
		rec.ResultMessage = str(value)
	case FieldResultFlag:
		rec.ResultFlag = str(value)
	case FieldErrorStack:
		rec.ErrorStack = str(value)
	default:
		if rec.Fields == nil {
			rec.Fields = make(map[string]any)
		}
		rec.Fields[string(key)] = value
	}
}

func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(v)
	}
}

// millis converts a duration or a number of milliseconds. Anything else
// clears the field.
func millis(v any) *int64 {
	var ms int64
	switch t := v.(type) {
	case time.Duration:
		ms = t.Milliseconds()
	case int:
		ms = int64(t)
	case int32:
		ms = int64(t)
	case int64:
		ms = t
	case float64:
		ms = int64(t)
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return nil
		}
		ms = n
	default:
		return nil
	}
	return &ms
}
