// Package core provides chatvault's application operations over one store
// file.
//
// An App owns the bbolt medium, the encrypted store on top of it, the
// security checks and the provider client. Core operations include:
//   - AddAPI/RemoveAPI/APIs: manage registered credentials
//   - AvailableModels/SelectModel/Selected: choose the model to talk to
//   - Chat/Conversation/ClearConversation: hold and keep a conversation
//   - TestConnection/TestAll: check that endpoints accept their keys
//   - Export/Import/Diff: move state in and out as JSON with masked keys
//   - Reset/Report/Status/Compact: maintain the store
//
// Datasets are read from their encrypted entries first. Data left by older
// versions in plain entries is encrypted and moved on first load.
package core
