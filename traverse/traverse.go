// Package traverse flattens the mailstore folder tree into an ordered item
// list before any export begins.
package traverse

import (
	"fmt"

	"github.com/dhcgn/pst-exporter/mailstore"
	"github.com/dhcgn/pst-exporter/model"
)

// UnnamedFolder is substituted for folders without a display name.
const UnnamedFolder = "Unnamed Folder"

// Extract walks the tree rooted at folder in pre-order: a folder's own
// messages in native index order, then each subfolder in native index
// order. The tree is assumed acyclic; any accessor error aborts the
// traversal and propagates to the caller.
func Extract(root mailstore.Folder) ([]model.Item, error) {
	var items []model.Item
	if err := walk(root, "", &items); err != nil {
		return nil, err
	}
	return items, nil
}

func walk(folder mailstore.Folder, folderPath string, items *[]model.Item) error {
	for i := 0; i < folder.MessageCount(); i++ {
		message, err := folder.Message(i)
		if err != nil {
			return fmt.Errorf("message %d in %q: %w", i, folderPath, err)
		}
		*items = append(*items, model.Item{Message: message, FolderPath: folderPath})
	}

	for j := 0; j < folder.SubfolderCount(); j++ {
		subfolder, err := folder.Subfolder(j)
		if err != nil {
			return fmt.Errorf("subfolder %d in %q: %w", j, folderPath, err)
		}
		name := subfolder.Name()
		if name == "" {
			name = UnnamedFolder
		}
		if err := walk(subfolder, joinPath(folderPath, name), items); err != nil {
			return err
		}
	}

	return nil
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}
