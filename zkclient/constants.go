package zkclient

// Protocol command codes (spec.md §6), decimal as observed on the wire.
const (
	cmdUserTempRRQ   = 9
	cmdOptionsRRQ    = 11
	cmdAttLogRRQ     = 13
	cmdGetFreeSizes  = 50
	cmdConnect       = 1000
	cmdExit          = 1001
	cmdEnableDevice  = 1002
	cmdDisableDevice = 1003
	cmdVersion       = 1100
	cmdSerialNumber  = 1101
	cmdAuth          = 1102
	cmdPrepareData   = 1500
	cmdData          = 1501
	cmdFreeData      = 1502
	cmdDataWRRQ      = 1503
	cmdDataRdy       = 1504
	cmdAckOK         = 2000
	cmdAckError      = 2001
	cmdAckData       = 2002
	cmdAckUnauth     = 2005

	cmdGetTime = 201
)

// fct selector values for CMD_DATA_WRRQ (glossary: "fct").
const (
	fctAttlog = 1
	fctUser   = 5
)

// maxChunk is the maximum payload per CMD_DATA_RDY reply (glossary:
// "MAX_CHUNK").
const maxChunk = 0xFFC0

// maxBulkSize refuses a bulk transfer announcing an unreasonable size
// (spec.md §7, Resource error kind).
const maxBulkSize = 100 * 1024 * 1024
