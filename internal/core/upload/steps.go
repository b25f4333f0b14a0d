package upload

// Item is the worker's view of one pending row.
type Item struct {
	HasServer  bool // backend record exists
	HasRemote  bool // blob store already holds the file
	FileExists bool
}

// Plan lists the steps to run for a pending item, in order: create the
// backend record, upload, then inform the backend and close the item.
type Plan struct {
	// GiveUp closes an item whose file is gone and was never uploaded:
	// nothing is left to retry.
	GiveUp bool
	// CreateRecord registers the item with the backend first. Best effort.
	CreateRecord bool
	// Upload sends the file to the blob store. False when a previous
	// cycle already stored it but could not close the item.
	Upload bool
}

// PlanItem decides how to process a pending item.
func PlanItem(item Item) Plan {
	if !item.HasRemote && !item.FileExists {
		return Plan{GiveUp: true}
	}
	return Plan{
		CreateRecord: !item.HasServer,
		Upload:       !item.HasRemote,
	}
}

// CanDeleteLocal reports whether the local file may be removed: only once
// the item is uploaded and the blob store returned an identifier.
func CanDeleteLocal(uploaded bool, remoteFileID string) bool {
	return uploaded && remoteFileID != ""
}
