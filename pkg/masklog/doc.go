// Package masklog is a structured request logger with field-level masking of
// sensitive data.
//
// A Logger accumulates one record per unit of work. Init starts the unit
// and ensures correlation ids; each Info, Debug, Warn or Error call emits a
// "detail" record whose message is the sanitized, masked and JSON-encoded
// payload; Flush or FlushError emits the closing "summary" record with the
// elapsed time and result code, then resets the logger for the next unit.
//
// Basic Usage:
//
//	logger, err := masklog.New(
//		masklog.WithService("chat-api"),
//		masklog.WithVersion("1.4.2"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	reqLog := logger.Fork().Init(masklog.InitOptions{UserID: "u-42"})
//	reqLog.Info(masklog.Inbound("POST /messages"), body,
//		masking.Rule{MaskingType: masking.TypeEmail, MaskingField: "sender.email"},
//		masking.Rule{MaskingType: masking.TypeMSISDN, MaskingField: "recipients.$.phone"},
//	)
//	reqLog.Flush(nil, "")
//
// Loggers are not meant to be shared between concurrent requests; derive one
// per request with Fork.
//
// Configuration can also come from YAML and MASKLOG_* environment variables
// through LoadConfig and NewFromConfig.
package masklog
