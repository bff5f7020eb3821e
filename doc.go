// Package attachly provides the object-storage gateway used by the notes
// application to store file attachments in any S3-compatible bucket.
//
// Requests to the bucket are signed with AWS Signature Version 4 computed
// in-process with the UNSIGNED-PAYLOAD body hash. Uploads are streamed to the
// bucket as they arrive.
//
// # Key Components
//
//   - Sign / Signer: SigV4 header signing for PUT and DELETE object requests
//   - SignatureVerifier: the matching verifier, used by the development store
//   - AttachmentService: uploads an object and records its metadata, or removes both
//   - AttachmentRepo: interface for attachment metadata persistence (PostgreSQL, SQLite)
//   - ObjectStore: interface for object PUT/DELETE (see the objectstore package)
//
// # Example Usage
//
//	service := attachly.NewAttachmentService(repo, objectstore.New())
//
//	record, err := service.Upload(ctx, userID, storageCfg, attachly.UploadRequest{
//	    NoteID:      noteID,
//	    Filename:    "photo.png",
//	    ContentType: "image/png",
//	    Size:        size,
//	    Content:     file,
//	})
//
// See the http package for the gateway endpoint, the prefs package for
// per-user storage configuration and the database package for metadata
// backends.
package attachly
