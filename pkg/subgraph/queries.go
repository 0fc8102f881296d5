package subgraph

const streamFields = `
    id
    sender
    releaseAmount
    remainingBalance
    startTime
    stopTime
    vestingRelease
    ratePerTime
    releaseFrequency
    releaseFrequencyType
    transferPrivilege
    cancelPrivilege
    recipient
    tokenAddress
    status`

const (
	incomingStreamsQuery = `query GetRecipientStreams($recipient: String!) {
  streams(where: {recipient: $recipient}) {` + streamFields + `
  }
}`

	outgoingStreamsQuery = `query GetOwnerStreams($owner: String!) {
  streams(where: {sender: $owner}) {` + streamFields + `
  }
}`

	streamByIDQuery = `query GetStream($id: String!) {
  stream(id: $id) {` + streamFields + `
  }
}`
)

const metaQuery = `query GetMeta {
  _meta {
    block { number }
    hasIndexingErrors
  }
}`
