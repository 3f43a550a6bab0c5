// Package domain contains the core types shared by the classification
// pipeline: scan requests, candidate URLs, provider threat matches and the
// verdict handed back to callers. They carry no infrastructure concerns so
// they can be used by the API, the classifier and the provider clients alike.
package domain
